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
RemoveTopic removes a topic with all its names and occurrences. A topic which
is still in use (as a type, supertype, theme, role player or reifier) can only
be removed by cascading. Cascading removes all dependent constructs first.
*/
func (tm *Manager) RemoveTopic(t data.ID, cascade bool) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if t, err = tm.topic(t); err == nil {
		err = tm.doRemoveTopic(op, t, cascade, make(map[data.ID]bool))
	}

	return err
}

/*
RemoveConstruct removes a name, occurrence, variant, association or role.
Names are removed with their variants and associations with their roles.
*/
func (tm *Manager) RemoveConstruct(c data.ID) error {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	if c, err = tm.construct(c, data.KindName, data.KindOccurrence, data.KindVariant,
		data.KindAssociation, data.KindRole); err == nil {

		if tm.ids.kind(c) == data.KindRole {
			tm.doRemoveRole(op, c)
		} else {
			tm.removeDependent(op, c, make(map[data.ID]bool))
		}
	}

	return err
}

/*
topicUsage returns why a topic cannot be removed without cascading. Returns
an empty string if the topic is not in use.
*/
func (tm *Manager) topicUsage(t data.ID) string {
	switch {
	case len(tm.topicTypes.instancesOf(t)) > 0:
		return "used as topic type"
	case tm.typed.isUsed(t):
		return "used as type"
	case len(tm.topicTypes.subtypesOf(t)) > 0:
		return "used as supertype"
	case tm.scopes.isTheme(t):
		return "used as theme"
	case tm.assocs.isPlayer(t):
		return "plays a role"
	case tm.features.ReificationDeletionConstraint && tm.reif.reifiedBy(t) != data.NoID:
		return "reifies a construct"
	}
	return ""
}

/*
doRemoveTopic removes a topic. The visited set guarantees termination on cyclic
dependencies.
*/
func (tm *Manager) doRemoveTopic(op *operation, t data.ID, cascade bool, visited map[data.ID]bool) error {
	if visited[t] || !tm.ids.exists(t) {
		return nil
	}

	if !cascade {
		if usage := tm.topicUsage(t); usage != "" {
			return &util.TopicMapError{Type: util.ErrConstructInUse,
				Detail: fmt.Sprintf("Topic %v is %v", t, usage)}
		}
	}

	visited[t] = true

	snap := tm.snapshot(t)

	if cascade {

		// Remove all dependents depth-first

		for _, inst := range tm.topicTypes.instancesOf(t) {
			errorutil.AssertOk(tm.doRemoveTopic(op, inst, true, visited))
		}

		for _, sub := range tm.topicTypes.subtypesOf(t) {
			tm.doRemoveSupertype(op, sub, t)
		}

		for _, c := range tm.typed.typedBy(t) {
			tm.removeDependent(op, c, visited)
		}

		for _, s := range tm.scopes.scopesWithTheme(t) {
			for _, c := range tm.scopes.constructsIn(s) {
				tm.removeDependent(op, c, visited)
			}
		}

		for _, r := range tm.assocs.rolesPlayed(t) {
			tm.removeDependent(op, tm.ids.parent(r), visited)
		}
	}

	if !tm.ids.exists(t) {

		// The topic was removed as a dependent of itself

		return nil
	}

	if reified := tm.reif.reifiedBy(t); reified != data.NoID {
		tm.doSetReifier(op, reified, data.NoID)
	}

	for _, name := range tm.chars.namesOf(t) {
		tm.doRemoveCharacteristic(op, name)
	}

	for _, occ := range tm.chars.occurrencesOf(t) {
		tm.doRemoveCharacteristic(op, occ)
	}

	for _, typ := range tm.topicTypes.typesOf(t) {
		tm.doRemoveType(op, t, typ)
	}

	for _, st := range tm.topicTypes.supertypesOf(t) {
		tm.doRemoveSupertype(op, t, st)
	}

	tm.removeIdentifiers(op, t)

	tm.revs.StoreSnapshot(snap)
	tm.ids.remove(t)

	op.notify(data.EventTopicRemoved, tm.tmID, nil, snap)

	return nil
}

/*
removeDependent removes a dependent construct of a topic which is removed by
cascading. Roles are removed together with their association.
*/
func (tm *Manager) removeDependent(op *operation, c data.ID, visited map[data.ID]bool) {
	if !tm.ids.exists(c) {
		return
	}

	switch tm.ids.kind(c) {
	case data.KindTopic:
		errorutil.AssertOk(tm.doRemoveTopic(op, c, true, visited))
	case data.KindName, data.KindOccurrence, data.KindVariant:
		tm.doRemoveCharacteristic(op, c)
	case data.KindAssociation:
		tm.doRemoveAssociation(op, c)
	case data.KindRole:
		tm.doRemoveAssociation(op, tm.ids.parent(c))
	}
}

/*
removeIdentifiers removes all identifiers of a construct.
*/
func (tm *Manager) removeIdentifiers(op *operation, c data.ID) {
	for _, loc := range tm.ids.itemIdentifiersOf(c) {
		tm.ids.removeItemIdentifier(c, loc)
		op.notify(data.EventItemIdentifierRemoved, c, nil, loc)
	}

	for _, loc := range tm.ids.subjectIdentifiersOf(c) {
		tm.ids.removeSubjectIdentifier(c, loc)
		op.notify(data.EventSubjectIdentifierRemoved, c, nil, loc)
	}

	for _, loc := range tm.ids.subjectLocatorsOf(c) {
		tm.ids.removeSubjectLocator(c, loc)
		op.notify(data.EventSubjectLocatorRemoved, c, nil, loc)
	}
}

/*
removeCommon removes the reifier link and identifiers of a construct.
*/
func (tm *Manager) removeCommon(op *operation, c data.ID) {
	if tm.reif.reifierOf(c) != data.NoID {
		tm.doSetReifier(op, c, data.NoID)
	}

	tm.removeIdentifiers(op, c)
}

/*
doRemoveCharacteristic removes a name (with its variants), an occurrence or a variant.
*/
func (tm *Manager) doRemoveCharacteristic(op *operation, c data.ID) {
	if !tm.ids.exists(c) {
		return
	}

	kind := tm.ids.kind(c)
	parent := tm.ids.parent(c)
	snap := tm.snapshot(c)

	event := data.EventOccurrenceRemoved

	switch kind {
	case data.KindName:
		event = data.EventNameRemoved
		for _, v := range tm.chars.variantsOf(c) {
			tm.doRemoveCharacteristic(op, v)
		}
	case data.KindVariant:
		event = data.EventVariantRemoved
	}

	tm.removeCommon(op, c)

	tm.chars.remove(kind, parent, c)
	tm.typed.remove(c)
	tm.scopes.remove(c)

	tm.revs.StoreSnapshot(snap)
	tm.ids.remove(c)

	op.notify(event, parent, nil, snap)
}

/*
doRemoveAssociation removes an association with all its roles.
*/
func (tm *Manager) doRemoveAssociation(op *operation, assoc data.ID) {
	if !tm.ids.exists(assoc) {
		return
	}

	snap := tm.snapshot(assoc)

	for _, r := range tm.assocs.rolesOf(assoc) {
		tm.doRemoveRole(op, r)
	}

	tm.removeCommon(op, assoc)

	tm.typed.remove(assoc)
	tm.scopes.remove(assoc)

	tm.revs.StoreSnapshot(snap)
	tm.ids.remove(assoc)

	op.notify(data.EventAssociationRemoved, tm.tmID, nil, snap)
}

/*
doRemoveRole removes a single role from its association.
*/
func (tm *Manager) doRemoveRole(op *operation, role data.ID) {
	if !tm.ids.exists(role) {
		return
	}

	assoc := tm.ids.parent(role)
	snap := tm.snapshot(role)

	tm.removeCommon(op, role)

	tm.assocs.removeRole(assoc, role)
	tm.typed.remove(role)

	tm.revs.StoreSnapshot(snap)
	tm.ids.remove(role)

	op.notify(data.EventRoleRemoved, assoc, nil, snap)
}
