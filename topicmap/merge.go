/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package topicmap

import (
	"fmt"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

/*
MergeTopics merges the source topic into the target topic. After the merge the
source topic no longer exists and its ID resolves to the target topic.
*/
func (tm *Manager) MergeTopics(target data.ID, source data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if target, err = tm.topic(target); err == nil {
		if source, err = tm.topic(source); err == nil {
			err = tm.doMergeTopics(op, target, source)
		}
	}

	return err
}

/*
doMergeTopics merges the source topic into the target topic.

The merge is done in the following steps:

 1. Names of the source which are equal to a name of the target are folded into
    the target's name (variants, identifiers and reifiers are carried over). All
    other names are recreated under the target.
 2. Occurrences are handled like names.
 3. Associations in which the source plays a role are folded into equal
    associations of the target. All other associations get the target as player.
 4. All identifiers of the source are moved to the target.
 5. All references to the source (as topic type, supertype, subtype, type of a
    construct, theme or role player) are replaced by references to the target.
 6. The construct reified by the source is reified by the target.
 7. The source is removed and its ID is redirected to the target.

Finally all duplicates which were caused by replacing references are removed
and reifier merges which had to wait for the merge are done.
*/
func (tm *Manager) doMergeTopics(op *operation, target data.ID, source data.ID) error {
	if err := tm.mergeTopicPair(op, target, source); err != nil {
		return err
	}

	tm.doPendingReifierMerges(op)

	return nil
}

/*
mergeTopicPair merges the source topic into the target topic.
*/
func (tm *Manager) mergeTopicPair(op *operation, target data.ID, source data.ID) error {
	target = tm.ids.resolve(target)
	source = tm.ids.resolve(source)

	if target == data.NoID || source == data.NoID {
		return &util.TopicMapError{Type: util.ErrModelConstraint, Detail: "Cannot merge unknown topic"}
	} else if target == source {
		return nil
	}

	if rt, rs := tm.reif.reifiedBy(target), tm.reif.reifiedBy(source); rt != data.NoID && rs != data.NoID {
		return &util.TopicMapError{Type: util.ErrModelConstraint,
			Detail: fmt.Sprintf("Topics %v and %v reify different constructs", target, source)}
	}

	LogDebug(fmt.Sprintf("Merging topic %v into topic %v", source, target))

	tm.merging[target] = true
	tm.merging[source] = true

	defer func() {
		delete(tm.merging, target)
		delete(tm.merging, source)
	}()

	sub := substitution{source, target}

	// Names and occurrences

	for _, lists := range [][2][]data.ID{
		{tm.chars.namesOf(target), tm.chars.namesOf(source)},
		{tm.chars.occurrencesOf(target), tm.chars.occurrencesOf(source)},
	} {
		existing := make(map[characteristicKey]data.ID)

		for _, c := range lists[0] {
			existing[tm.characteristicKey(c, sub)] = c
		}

		for _, c := range lists[1] {
			key := tm.characteristicKey(c, sub)

			if keep, ok := existing[key]; ok {
				tm.mergeDuplicateCharacteristic(op, keep, c)
			} else {
				existing[key] = tm.moveCharacteristic(op, target, c)
			}
		}
	}

	// Associations

	tm.mergeAssociations(op, target, source, sub)

	// Identities

	tm.moveItemIdentifiers(op, source, target)

	for _, loc := range tm.ids.subjectIdentifiersOf(source) {
		tm.ids.removeSubjectIdentifier(source, loc)
		op.notify(data.EventSubjectIdentifierRemoved, source, nil, loc)

		tm.ids.addSubjectIdentifier(target, loc)
		op.notify(data.EventSubjectIdentifierAdded, target, loc, nil)
	}

	for _, loc := range tm.ids.subjectLocatorsOf(source) {
		tm.ids.removeSubjectLocator(source, loc)
		op.notify(data.EventSubjectLocatorRemoved, source, nil, loc)

		tm.ids.addSubjectLocator(target, loc)
		op.notify(data.EventSubjectLocatorAdded, target, loc, nil)
	}

	// References

	affected := tm.repointReferences(op, target, source, sub)

	// Reified construct

	if reified := tm.reif.reifiedBy(source); reified != data.NoID && tm.ids.exists(reified) {
		tm.doSetReifier(op, reified, data.NoID)
		tm.doSetReifier(op, reified, target)
	}

	// Remove the source

	snap := tm.snapshot(source)

	tm.revs.StoreSnapshot(snap)
	tm.ids.remove(source)
	tm.ids.redirect(source, target)

	op.notify(data.EventTopicRemoved, tm.tmID, nil, snap)
	op.notify(data.EventTopicsMerged, target, target, source)

	tm.removeMergeDuplicates(op, target, affected)

	return nil
}

/*
mergeAssociations folds the associations of the source topic into the target topic.
*/
func (tm *Manager) mergeAssociations(op *operation, target data.ID, source data.ID, sub substitution) {
	for _, assoc := range tm.associationsPlayed(source) {

		if !tm.ids.exists(assoc) {
			continue
		}

		key := tm.associationKey(assoc, sub)
		dup := data.NoID

		for _, cand := range tm.associationsPlayed(target) {
			if cand != assoc && tm.associationKey(cand, sub) == key {
				dup = cand
				break
			}
		}

		if dup != data.NoID {
			tm.mergeDuplicateAssociation(op, dup, assoc, sub)
			continue
		}

		for _, r := range tm.assocs.rolesOf(assoc) {
			if tm.assocs.playerOf(r) == source {
				tm.doSetPlayer(op, r, target)
			}
		}
	}
}

/*
repointReferences replaces all references to the source topic by references
to the target topic. Returns all constructs whose type or scope was changed.
*/
func (tm *Manager) repointReferences(op *operation, target data.ID, source data.ID, sub substitution) []data.ID {
	var affected []data.ID

	for _, typ := range tm.topicTypes.typesOf(source) {
		tm.doRemoveType(op, source, typ)
		tm.doAddType(op, target, sub.id(typ))
	}

	for _, inst := range tm.topicTypes.instancesOf(source) {
		tm.doRemoveType(op, inst, source)
		tm.doAddType(op, inst, target)
	}

	for _, st := range tm.topicTypes.supertypesOf(source) {
		tm.doRemoveSupertype(op, source, st)
		tm.doAddSupertype(op, target, sub.id(st))
	}

	for _, st := range tm.topicTypes.subtypesOf(source) {
		tm.doRemoveSupertype(op, st, source)
		tm.doAddSupertype(op, st, target)
	}

	for _, c := range tm.typed.typedBy(source) {
		tm.doSetType(op, c, target)
		affected = append(affected, c)
	}

	for _, s := range tm.scopes.scopesWithTheme(source) {
		ns := tm.scopes.scope(s.Replace(source, target))

		for _, c := range tm.scopes.constructsIn(s) {
			tm.doSetScope(op, c, ns)
			affected = append(affected, c)
		}
	}

	for _, r := range tm.assocs.rolesPlayed(source) {
		tm.doSetPlayer(op, r, target)
		affected = append(affected, r)
	}

	return affected
}

/*
removeMergeDuplicates removes duplicates which were caused by replacing
references during a merge.
*/
func (tm *Manager) removeMergeDuplicates(op *operation, target data.ID, affected []data.ID) {
	topics := []data.ID{target}
	assocs := tm.associationsPlayed(target)

	for _, c := range affected {
		if !tm.ids.exists(c) {
			continue
		}

		switch tm.ids.kind(c) {
		case data.KindName, data.KindOccurrence:
			topics = append(topics, tm.ids.parent(c))
		case data.KindVariant:
			topics = append(topics, tm.ids.parent(tm.ids.parent(c)))
		case data.KindAssociation:
			assocs = append(assocs, c)
		case data.KindRole:
			assocs = append(assocs, tm.ids.parent(c))
		}
	}

	for _, t := range data.SortedIDs(topics) {
		tm.doRemoveTopicDuplicates(op, t)
	}

	// Equal associations must have the same type

	for _, a := range data.SortedIDs(assocs) {
		assocs = append(assocs, tm.typed.typedBy(tm.typed.typeOf(a))...)
	}

	tm.doRemoveDuplicateAssociations(op, tm.filterKind(data.SortedIDs(assocs), data.KindAssociation))
}

/*
doMergeReifiable merges the reifiers of two equal constructs. The construct b
is a duplicate of a which is about to be removed. If both constructs have a
reifier then both reifiers are merged into a new topic which reifies a.
*/
func (tm *Manager) doMergeReifiable(op *operation, a data.ID, b data.ID) {
	ra := tm.reif.reifierOf(a)
	rb := tm.reif.reifierOf(b)

	if rb == data.NoID || ra == rb {
		return
	}

	tm.doSetReifier(op, b, data.NoID)

	if ra == data.NoID {
		tm.doSetReifier(op, a, rb)
		return
	}

	if tm.merging[rb] {

		// rb is part of an ongoing merge - ra is merged into it afterwards

		tm.reifierMerges = append(tm.reifierMerges, reifierMerge{rb, ra})
		return

	} else if tm.merging[ra] {

		// a keeps its reifier - rb is merged into it afterwards

		tm.reifierMerges = append(tm.reifierMerges, reifierMerge{ra, rb})
		return
	}

	tm.doSetReifier(op, a, data.NoID)

	reifier := tm.doCreateTopic(op)

	errorutil.AssertOk(tm.doMergeTopics(op, reifier, ra))
	errorutil.AssertOk(tm.doMergeTopics(op, reifier, rb))

	tm.doSetReifier(op, a, reifier)
}

/*
reifierMerge is a merge of two reifiers which has to wait until an ongoing merge
of the keep topic has finished.
*/
type reifierMerge struct {
	keep  data.ID // Reifier which is part of an ongoing merge
	other data.ID // Reifier which is merged into the keep reifier
}

/*
doPendingReifierMerges merges all waiting reifiers which are no longer part of
an ongoing merge. The construct reified by the other reifier was removed as a
duplicate so the kept reifier takes over all its identities.
*/
func (tm *Manager) doPendingReifierMerges(op *operation) {
	pending := tm.reifierMerges
	tm.reifierMerges = nil

	for i, rm := range pending {
		keep, other := tm.ids.resolve(rm.keep), tm.ids.resolve(rm.other)

		if tm.merging[keep] || tm.merging[other] {
			tm.reifierMerges = append(tm.reifierMerges, rm)
			continue
		}

		if keep == data.NoID || other == data.NoID || keep == other {
			continue
		}

		if err := tm.doMergeTopics(op, keep, other); err != nil {
			LogInfo(fmt.Sprintf("Could not merge reifier %v into %v: %v", other, keep, err))
		}

		// Merges above may have added new waiting reifiers

		tm.reifierMerges = append(tm.reifierMerges, pending[i+1:]...)
		tm.doPendingReifierMerges(op)

		return
	}
}

/*
checkNameMerge merges all topics which have a name equal to a given name into
the topic of the name (only if merging by topic name is enabled).
*/
func (tm *Manager) checkNameMerge(op *operation, name data.ID) error {
	if !tm.features.MergeByTopicName || !tm.ids.exists(name) {
		return nil
	}

	t := tm.ids.parent(name)
	key := tm.characteristicKey(name, noSubstitution)

	for _, other := range tm.ids.all(data.KindName) {
		if ot := tm.ids.parent(other); ot != t && tm.ids.exists(other) && tm.characteristicKey(other, noSubstitution) == key {

			if !tm.features.AutomaticMerging {
				return &util.TopicMapError{Type: util.ErrIdentityConflict,
					Detail: fmt.Sprintf("Topic %v has a name equal to name %v", ot, name)}
			}

			if err := tm.doMergeTopics(op, t, ot); err != nil {
				return err
			}
		}
	}

	return nil
}
