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
	"sort"
	"strings"

	"github.com/krotik/common/stringutil"
	"github.com/krotik/topicdb/topicmap/data"
)

// Signatures
// ==========

/*
substitution replaces one topic by another when signatures are compared.
During a merge the source topic is treated as if it was already the target.
*/
type substitution struct {
	from data.ID
	to   data.ID
}

/*
noSubstitution compares signatures as they are.
*/
var noSubstitution = substitution{}

func (s substitution) id(id data.ID) data.ID {
	if s.from != data.NoID && id == s.from {
		return s.to
	}
	return id
}

func (s substitution) scope(sc *data.Scope) string {
	if s.from == data.NoID || !sc.Contains(s.from) {
		return sc.ID()
	}
	return data.ScopeKey(sc.Replace(s.from, s.to))
}

/*
characteristicKey is the signature of a name, occurrence or variant. Two
characteristics of the same parent are duplicates if their keys are equal.
*/
type characteristicKey struct {
	typ   data.ID
	lit   data.Literal
	scope string
}

func (tm *Manager) characteristicKey(c data.ID, sub substitution) characteristicKey {
	return characteristicKey{sub.id(tm.typed.typeOf(c)), tm.chars.value(c), sub.scope(tm.scopes.scopeOf(c))}
}

/*
associationKey is the signature of an association. The roles are compared as
a set of role type and player pairs.
*/
type associationKey struct {
	typ   data.ID
	scope string
	roles string
}

func (tm *Manager) associationKey(assoc data.ID, sub substitution) associationKey {
	roles := make([]string, 0)
	seen := make(map[roleKey]bool)

	for _, r := range tm.assocs.rolesOf(assoc) {
		rk := tm.roleKey(r, sub)

		if !seen[rk] {
			seen[rk] = true
			roles = append(roles, fmt.Sprintf("%v:%v", rk.typ, rk.player))
		}
	}

	sort.Strings(roles)

	return associationKey{sub.id(tm.typed.typeOf(assoc)), sub.scope(tm.scopes.scopeOf(assoc)),
		strings.Join(roles, ",")}
}

/*
roleKey is the signature of a role.
*/
type roleKey struct {
	typ    data.ID
	player data.ID
}

func (tm *Manager) roleKey(role data.ID, sub substitution) roleKey {
	return roleKey{sub.id(tm.typed.typeOf(role)), sub.id(tm.assocs.playerOf(role))}
}

// Duplicate removal
// =================

/*
RemoveDuplicates removes all duplicate names, occurrences, variants,
associations and roles from the topic map. Returns the number of removed
duplicates.
*/
func (tm *Manager) RemoveDuplicates() (int, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return 0, err
	}
	defer unlock()

	count := 0

	for _, t := range tm.ids.all(data.KindTopic) {
		count += tm.doRemoveTopicDuplicates(op, t)
	}

	count += tm.doRemoveDuplicateAssociations(op, tm.ids.all(data.KindAssociation))

	if count > 0 {
		LogDebug(fmt.Sprintf("Removed %v duplicate%v from topic map %v", count,
			stringutil.Plural(count), tm.name))
	}

	return count, nil
}

/*
RemoveTopicDuplicates removes all duplicate characteristics of a topic and all
duplicates of the associations the topic plays a role in.
*/
func (tm *Manager) RemoveTopicDuplicates(t data.ID) (int, error) {
	op, unlock, err := tm.writeOp()
	if err != nil {
		return 0, err
	}
	defer unlock()

	if t, err = tm.topic(t); err != nil {
		return 0, err
	}

	count := tm.doRemoveTopicDuplicates(op, t)

	assocs := tm.associationsPlayed(t)
	for _, a := range assocs {
		assocs = append(assocs, tm.typed.typedBy(tm.typed.typeOf(a))...)
	}

	count += tm.doRemoveDuplicateAssociations(op, tm.filterKind(data.SortedIDs(assocs), data.KindAssociation))

	return count, nil
}

/*
doRemoveTopicDuplicates removes duplicate names, occurrences and variants of a topic.
*/
func (tm *Manager) doRemoveTopicDuplicates(op *operation, t data.ID) int {
	count := 0

	for _, list := range [][]data.ID{tm.chars.namesOf(t), tm.chars.occurrencesOf(t)} {
		seen := make(map[characteristicKey]data.ID)

		for _, c := range list {
			key := tm.characteristicKey(c, noSubstitution)

			if keep, ok := seen[key]; ok {
				tm.mergeDuplicateCharacteristic(op, keep, c)
				count++
			} else {
				seen[key] = c
			}
		}
	}

	for _, name := range tm.chars.namesOf(t) {
		count += tm.removeVariantDuplicates(op, name)
	}

	return count
}

/*
removeVariantDuplicates removes duplicate variants of a name.
*/
func (tm *Manager) removeVariantDuplicates(op *operation, name data.ID) int {
	count := 0
	seen := make(map[characteristicKey]data.ID)

	for _, v := range tm.chars.variantsOf(name) {
		key := tm.characteristicKey(v, noSubstitution)

		if keep, ok := seen[key]; ok {
			tm.mergeDuplicateCharacteristic(op, keep, v)
			count++
		} else {
			seen[key] = v
		}
	}

	return count
}

/*
doRemoveDuplicateAssociations removes duplicates within a list of associations
and duplicate roles within the remaining associations.
*/
func (tm *Manager) doRemoveDuplicateAssociations(op *operation, assocs []data.ID) int {
	var kept []data.ID

	count := 0
	seen := make(map[associationKey]data.ID)

	for _, a := range assocs {
		if !tm.ids.exists(a) {
			continue
		}

		key := tm.associationKey(a, noSubstitution)

		if keep, ok := seen[key]; ok {
			tm.mergeDuplicateAssociation(op, keep, a, noSubstitution)
			count++
		} else {
			seen[key] = a
			kept = append(kept, a)
		}
	}

	for _, a := range kept {
		count += tm.removeRoleDuplicates(op, a)
	}

	return count
}

/*
removeRoleDuplicates removes roles of an association which have the same type
and player as another role.
*/
func (tm *Manager) removeRoleDuplicates(op *operation, assoc data.ID) int {
	count := 0
	seen := make(map[roleKey]data.ID)

	for _, r := range tm.assocs.rolesOf(assoc) {
		key := tm.roleKey(r, noSubstitution)

		if keep, ok := seen[key]; ok {
			tm.moveItemIdentifiers(op, r, keep)
			tm.doMergeReifiable(op, keep, r)
			tm.doRemoveRole(op, r)
			op.notify(data.EventDuplicateRemoved, keep, keep, r)
			count++
		} else {
			seen[key] = r
		}
	}

	return count
}

/*
mergeDuplicateCharacteristic folds a duplicate name, occurrence or variant into
the characteristic which is kept. The variants of a duplicate name are moved to
the kept name.
*/
func (tm *Manager) mergeDuplicateCharacteristic(op *operation, keep data.ID, dup data.ID) {
	if tm.ids.kind(dup) == data.KindName {
		existing := make(map[characteristicKey]data.ID)

		for _, v := range tm.chars.variantsOf(keep) {
			existing[tm.characteristicKey(v, noSubstitution)] = v
		}

		for _, v := range tm.chars.variantsOf(dup) {
			key := tm.characteristicKey(v, noSubstitution)

			if kv, ok := existing[key]; ok {
				tm.mergeDuplicateCharacteristic(op, kv, v)
			} else {
				existing[key] = tm.moveCharacteristic(op, keep, v)
			}
		}
	}

	tm.moveItemIdentifiers(op, dup, keep)
	tm.doMergeReifiable(op, keep, dup)
	tm.doRemoveCharacteristic(op, dup)

	op.notify(data.EventDuplicateRemoved, keep, keep, dup)
}

/*
mergeDuplicateAssociation folds a duplicate association into the association
which is kept. Identifiers and reifiers of roles are moved to the matching
roles of the kept association.
*/
func (tm *Manager) mergeDuplicateAssociation(op *operation, keep data.ID, dup data.ID, sub substitution) {
	keepRoles := make(map[roleKey]data.ID)

	for _, r := range tm.assocs.rolesOf(keep) {
		keepRoles[tm.roleKey(r, sub)] = r
	}

	for _, r := range tm.assocs.rolesOf(dup) {
		if kr, ok := keepRoles[tm.roleKey(r, sub)]; ok {
			tm.moveItemIdentifiers(op, r, kr)
			tm.doMergeReifiable(op, kr, r)
		}
	}

	tm.moveItemIdentifiers(op, dup, keep)
	tm.doMergeReifiable(op, keep, dup)
	tm.doRemoveAssociation(op, dup)

	op.notify(data.EventDuplicateRemoved, keep, keep, dup)
}

/*
moveCharacteristic recreates a name, occurrence or variant under a new parent
with all its identifiers, its reifier and (for names) its variants. The old
characteristic is removed. Returns the new characteristic.
*/
func (tm *Manager) moveCharacteristic(op *operation, parent data.ID, c data.ID) data.ID {
	var nc data.ID

	lit := tm.chars.value(c)
	scope := tm.scopes.scopeOf(c)

	switch tm.ids.kind(c) {
	case data.KindName:
		nc = tm.doCreateName(op, parent, tm.typed.typeOf(c), lit.Value, scope)

		for _, v := range tm.chars.variantsOf(c) {
			tm.moveCharacteristic(op, nc, v)
		}

	case data.KindOccurrence:
		nc = tm.doCreateOccurrence(op, parent, tm.typed.typeOf(c), lit, scope)

	case data.KindVariant:
		nc = tm.doCreateVariant(op, parent, lit, scope)
	}

	tm.moveItemIdentifiers(op, c, nc)
	tm.moveReifier(op, c, nc)
	tm.doRemoveCharacteristic(op, c)

	return nc
}

/*
moveItemIdentifiers moves all item identifiers from one construct to another.
*/
func (tm *Manager) moveItemIdentifiers(op *operation, from data.ID, to data.ID) {
	for _, loc := range tm.ids.itemIdentifiersOf(from) {
		tm.ids.removeItemIdentifier(from, loc)
		op.notify(data.EventItemIdentifierRemoved, from, nil, loc)

		tm.ids.addItemIdentifier(to, loc)
		op.notify(data.EventItemIdentifierAdded, to, loc, nil)
	}
}

/*
moveReifier moves the reifier of one construct to another construct.
*/
func (tm *Manager) moveReifier(op *operation, from data.ID, to data.ID) {
	if r := tm.reif.reifierOf(from); r != data.NoID {
		tm.doSetReifier(op, from, data.NoID)
		tm.doSetReifier(op, to, r)
	}
}
