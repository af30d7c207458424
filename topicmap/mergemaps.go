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
MergeTopicMaps imports all constructs of another topic map. Topics with equal
identifiers are merged. Associations of the reserved type-instance and
supertype-subtype types are not copied but turned into topic types and
supertypes. Import problems of single constructs do not stop the import; they
are collected and returned as a composite error.
*/
func (tm *Manager) MergeTopicMaps(other *Manager) error {
	if other == tm {
		return nil
	}

	other.mutex.RLock()
	defer other.mutex.RUnlock()

	op, unlock, err := tm.writeOp()
	if err != nil {
		return err
	}
	defer unlock()

	mi := &mapImport{tm, other, op, make(map[data.ID]data.ID), errorutil.NewCompositeError()}

	LogDebug(fmt.Sprintf("Merging topic map %v into %v", other.name, tm.name))

	mi.importTopics()
	mi.importTopicMapConstruct()
	mi.importCharacteristics()
	mi.importAssociations()

	// Fold duplicates which were created by the import

	var touched []data.ID
	for _, t := range mi.mapping {
		touched = append(touched, t)
	}

	for _, t := range data.SortedIDs(touched) {
		if t = tm.ids.resolve(t); t != data.NoID {
			tm.doRemoveTopicDuplicates(op, t)
		}
	}

	tm.doRemoveDuplicateAssociations(op, tm.ids.all(data.KindAssociation))

	if mi.errors.HasErrors() {
		return mi.errors
	}

	return nil
}

/*
mapImport holds the state of a topic map import.
*/
type mapImport struct {
	tm      *Manager                  // Receiving topic map
	other   *Manager                  // Imported topic map
	op      *operation                // Import operation
	mapping map[data.ID]data.ID       // Imported topic -> receiving topic
	errors  *errorutil.CompositeError // Collected import errors
}

/*
topic returns the receiving topic for an imported topic.
*/
func (mi *mapImport) topic(t data.ID) data.ID {
	if t == data.NoID {
		return data.NoID
	}
	return mi.tm.ids.resolve(mi.mapping[t])
}

/*
scope returns the receiving scope for an imported scope.
*/
func (mi *mapImport) scope(s *data.Scope) *data.Scope {
	var themes []data.ID

	for _, t := range s.Themes() {
		themes = append(themes, mi.topic(t))
	}

	return mi.tm.scopes.scope(themes)
}

/*
addError records an import error.
*/
func (mi *mapImport) addError(err error) {
	if err != nil {
		mi.errors.Add(err)
	}
}

/*
importTopics finds or creates a receiving topic for every imported topic and
copies topic identities, types and supertypes.
*/
func (mi *mapImport) importTopics() {
	tm, other := mi.tm, mi.other

	for _, t := range other.ids.all(data.KindTopic) {
		target := data.NoID

		sis := other.ids.subjectIdentifiersOf(t)
		iis := other.ids.itemIdentifiersOf(t)
		sls := other.ids.subjectLocatorsOf(t)

		for _, loc := range sis {
			if target = tm.topicByIdentity(loc); target != data.NoID {
				break
			}
		}

		for i := 0; target == data.NoID && i < len(iis); i++ {
			target = tm.topicByIdentity(iis[i])
		}

		for i := 0; target == data.NoID && i < len(sls); i++ {
			target = tm.ids.bySubjectLocator(sls[i])
		}

		if target == data.NoID {
			target = tm.doCreateTopic(mi.op)
		}

		mi.mapping[t] = target

		for _, loc := range sis {
			mi.addError(tm.doAddSubjectIdentifier(mi.op, tm.ids.resolve(target), loc))
		}

		for _, loc := range iis {
			mi.addError(tm.doAddItemIdentifier(mi.op, tm.ids.resolve(target), loc))
		}

		for _, loc := range sls {
			mi.addError(tm.doAddSubjectLocator(mi.op, tm.ids.resolve(target), loc))
		}
	}

	for _, t := range other.ids.all(data.KindTopic) {
		for _, typ := range other.topicTypes.typesOf(t) {
			tm.doAddType(mi.op, mi.topic(t), mi.topic(typ))
		}

		for _, st := range other.topicTypes.supertypesOf(t) {
			tm.doAddSupertype(mi.op, mi.topic(t), mi.topic(st))
		}
	}
}

/*
topicByIdentity returns the topic which has a given locator as subject
identifier or item identifier.
*/
func (tm *Manager) topicByIdentity(loc data.Locator) data.ID {
	if t := tm.ids.bySubjectIdentifier(loc); t != data.NoID {
		return t
	}

	if c := tm.ids.byItemIdentifier(loc); tm.ids.kind(c) == data.KindTopic {
		return c
	}

	return data.NoID
}

/*
importTopicMapConstruct copies the item identifiers and the reifier of the
imported topic map construct.
*/
func (mi *mapImport) importTopicMapConstruct() {
	for _, loc := range mi.other.ids.itemIdentifiersOf(mi.other.tmID) {
		mi.addError(mi.tm.doAddItemIdentifier(mi.op, mi.tm.tmID, loc))
	}

	mi.importReifier(mi.other.tmID, mi.tm.tmID)
}

/*
importReifier copies the reifier of an imported construct.
*/
func (mi *mapImport) importReifier(c data.ID, nc data.ID) {
	r := mi.other.reif.reifierOf(c)
	if r == data.NoID {
		return
	}

	reifier := mi.topic(r)
	current := mi.tm.reif.reifierOf(nc)

	if reified := mi.tm.reif.reifiedBy(reifier); reified != data.NoID && reified != nc {
		mi.addError(&util.TopicMapError{Type: util.ErrModelConstraint,
			Detail: fmt.Sprintf("Topic %v already reifies %v", reifier, reified)})
	} else if current != data.NoID && current != reifier {
		mi.addError(mi.tm.doMergeTopics(mi.op, current, reifier))
	} else {
		mi.tm.doSetReifier(mi.op, nc, reifier)
	}
}

/*
importIdentifiers copies the item identifiers of an imported construct.
*/
func (mi *mapImport) importIdentifiers(c data.ID, nc data.ID) {
	for _, loc := range mi.other.ids.itemIdentifiersOf(c) {
		mi.addError(mi.tm.doAddItemIdentifier(mi.op, nc, loc))
	}

	mi.importReifier(c, nc)
}

/*
importCharacteristics copies all names, variants and occurrences.
*/
func (mi *mapImport) importCharacteristics() {
	tm, other := mi.tm, mi.other

	for _, t := range other.ids.all(data.KindTopic) {

		for _, name := range other.chars.namesOf(t) {
			nn := tm.doCreateName(mi.op, mi.topic(t), mi.topic(other.typed.typeOf(name)),
				other.chars.value(name).Value, mi.scope(other.scopes.scopeOf(name)))

			for _, v := range other.chars.variantsOf(name) {
				nv := tm.doCreateVariant(mi.op, nn, other.chars.value(v), mi.scope(other.scopes.scopeOf(v)))
				mi.importIdentifiers(v, nv)
			}

			mi.importIdentifiers(name, nn)
		}

		for _, occ := range other.chars.occurrencesOf(t) {
			no := tm.doCreateOccurrence(mi.op, mi.topic(t), mi.topic(other.typed.typeOf(occ)),
				other.chars.value(occ), mi.scope(other.scopes.scopeOf(occ)))

			mi.importIdentifiers(occ, no)
		}
	}
}

/*
importAssociations copies all associations. Type-instance and
supertype-subtype associations are turned into topic types and supertypes.
*/
func (mi *mapImport) importAssociations() {
	tm, other := mi.tm, mi.other

	typeInstance := other.ids.bySubjectIdentifier(data.PSITypeInstance)
	supertypeSubtype := other.ids.bySubjectIdentifier(data.PSISupertypeSubtype)

	for _, assoc := range other.ids.all(data.KindAssociation) {
		typ := other.typed.typeOf(assoc)

		if typ != data.NoID && typ == typeInstance {
			mi.importReservedAssociation(assoc, data.PSIType, data.PSIInstance, func(typ, inst data.ID) {
				tm.doAddType(mi.op, inst, typ)
			})
			continue

		} else if typ != data.NoID && typ == supertypeSubtype {
			mi.importReservedAssociation(assoc, data.PSISupertype, data.PSISubtype, func(st, sub data.ID) {
				tm.doAddSupertype(mi.op, sub, st)
			})
			continue
		}

		na := tm.doCreateAssociation(mi.op, mi.topic(typ), mi.scope(other.scopes.scopeOf(assoc)))

		for _, r := range other.assocs.rolesOf(assoc) {
			nr := tm.doCreateRole(mi.op, na, mi.topic(other.typed.typeOf(r)), mi.topic(other.assocs.playerOf(r)))
			mi.importIdentifiers(r, nr)
		}

		mi.importIdentifiers(assoc, na)
	}
}

/*
importReservedAssociation checks that a reserved association has exactly two
roles of the two given role types and applies the relation it describes.
*/
func (mi *mapImport) importReservedAssociation(assoc data.ID, role1 data.Locator, role2 data.Locator,
	apply func(data.ID, data.ID)) {

	other := mi.other

	rt1 := other.ids.bySubjectIdentifier(role1)
	rt2 := other.ids.bySubjectIdentifier(role2)

	var p1, p2 data.ID

	roles := other.assocs.rolesOf(assoc)

	if len(roles) == 2 {
		for _, r := range roles {
			switch rtyp := other.typed.typeOf(r); {
			case rtyp == rt1 && p1 == data.NoID:
				p1 = other.assocs.playerOf(r)
			case rtyp == rt2 && p2 == data.NoID:
				p2 = other.assocs.playerOf(r)
			}
		}
	}

	if rt1 == data.NoID || rt2 == data.NoID || p1 == data.NoID || p2 == data.NoID {
		mi.addError(&util.TopicMapError{Type: util.ErrInvalidModelState,
			Detail: fmt.Sprintf("Association %v must have exactly one %v role and one %v role",
				assoc, role1, role2)})
		return
	}

	apply(mi.topic(p1), mi.topic(p2))
}
