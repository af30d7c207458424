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
	"sort"

	"github.com/krotik/topicdb/topicmap/data"
)

// Characteristics store
// =====================

/*
characteristicsStore holds names, occurrences and variants together with
their literal values.
*/
type characteristicsStore struct {
	names       map[data.ID]map[data.ID]bool // Topic -> names
	occurrences map[data.ID]map[data.ID]bool // Topic -> occurrences
	variants    map[data.ID]map[data.ID]bool // Name -> variants
	values      map[data.ID]data.Literal     // Characteristic -> value
}

func newCharacteristicsStore() *characteristicsStore {
	return &characteristicsStore{make(map[data.ID]map[data.ID]bool),
		make(map[data.ID]map[data.ID]bool), make(map[data.ID]map[data.ID]bool),
		make(map[data.ID]data.Literal)}
}

/*
children returns the characteristics table for a given kind.
*/
func (cs *characteristicsStore) children(kind data.Kind) map[data.ID]map[data.ID]bool {
	switch kind {
	case data.KindName:
		return cs.names
	case data.KindOccurrence:
		return cs.occurrences
	case data.KindVariant:
		return cs.variants
	}
	return nil
}

func (cs *characteristicsStore) add(kind data.Kind, parent data.ID, c data.ID, value data.Literal) {
	addToSet(cs.children(kind), parent, c)
	cs.values[c] = value
}

func (cs *characteristicsStore) remove(kind data.Kind, parent data.ID, c data.ID) {
	removeFromSet(cs.children(kind), parent, c)
	delete(cs.values, c)
}

func (cs *characteristicsStore) namesOf(topic data.ID) []data.ID {
	return idSet(cs.names[topic])
}

func (cs *characteristicsStore) occurrencesOf(topic data.ID) []data.ID {
	return idSet(cs.occurrences[topic])
}

func (cs *characteristicsStore) variantsOf(name data.ID) []data.ID {
	return idSet(cs.variants[name])
}

func (cs *characteristicsStore) value(c data.ID) data.Literal {
	return cs.values[c]
}

func (cs *characteristicsStore) setValue(c data.ID, value data.Literal) data.Literal {
	old := cs.values[c]
	cs.values[c] = value
	return old
}

// Typed store
// ===========

/*
typedStore holds the types of names, occurrences, associations and roles.
*/
type typedStore struct {
	types map[data.ID]data.ID          // Construct -> type
	typed map[data.ID]map[data.ID]bool // Type -> constructs
}

func newTypedStore() *typedStore {
	return &typedStore{make(map[data.ID]data.ID), make(map[data.ID]map[data.ID]bool)}
}

func (ts *typedStore) setType(c data.ID, typ data.ID) data.ID {
	old := ts.types[c]

	if old != data.NoID {
		removeFromSet(ts.typed, old, c)
	}

	ts.types[c] = typ
	addToSet(ts.typed, typ, c)

	return old
}

func (ts *typedStore) typeOf(c data.ID) data.ID {
	return ts.types[c]
}

func (ts *typedStore) typedBy(typ data.ID) []data.ID {
	return idSet(ts.typed[typ])
}

func (ts *typedStore) isUsed(typ data.ID) bool {
	return len(ts.typed[typ]) > 0
}

func (ts *typedStore) remove(c data.ID) {
	if old, ok := ts.types[c]; ok {
		removeFromSet(ts.typed, old, c)
		delete(ts.types, c)
	}
}

// Scope store
// ===========

/*
scopeStore interns scope objects and holds the scopes of scoped constructs.
*/
type scopeStore struct {
	scopes  map[string]*data.Scope      // Interned scopes
	scoped  map[data.ID]*data.Scope     // Construct -> scope
	byScope map[string]map[data.ID]bool // Scope id -> constructs
	byTheme map[data.ID]map[string]bool // Theme -> scope ids in use
	ucs     *data.Scope                 // Unconstrained scope
}

func newScopeStore() *scopeStore {
	ucs := data.NewScope(nil)
	return &scopeStore{map[string]*data.Scope{ucs.ID(): ucs}, make(map[data.ID]*data.Scope),
		make(map[string]map[data.ID]bool), make(map[data.ID]map[string]bool), ucs}
}

/*
scope returns the interned scope object for a set of themes.
*/
func (ss *scopeStore) scope(themes []data.ID) *data.Scope {
	key := data.ScopeKey(themes)

	s, ok := ss.scopes[key]
	if !ok {
		s = data.NewScope(themes)
		ss.scopes[key] = s
	}

	return s
}

func (ss *scopeStore) setScope(c data.ID, s *data.Scope) *data.Scope {
	old := ss.scopeOf(c)

	ss.remove(c)

	ss.scoped[c] = s

	set, ok := ss.byScope[s.ID()]
	if !ok {
		set = make(map[data.ID]bool)
		ss.byScope[s.ID()] = set
	}
	set[c] = true

	for _, t := range s.Themes() {
		ids, ok := ss.byTheme[t]
		if !ok {
			ids = make(map[string]bool)
			ss.byTheme[t] = ids
		}
		ids[s.ID()] = true
	}

	return old
}

/*
scopeOf returns the scope of a construct. Constructs without an explicit
scope are in the unconstrained scope.
*/
func (ss *scopeStore) scopeOf(c data.ID) *data.Scope {
	if s, ok := ss.scoped[c]; ok {
		return s
	}
	return ss.ucs
}

func (ss *scopeStore) constructsIn(s *data.Scope) []data.ID {
	return idSet(ss.byScope[s.ID()])
}

/*
scopesWithTheme returns all scopes in use which contain a given theme.
*/
func (ss *scopeStore) scopesWithTheme(theme data.ID) []*data.Scope {
	var res []*data.Scope

	for _, key := range sortedKeys(ss.byTheme[theme]) {
		res = append(res, ss.scopes[key])
	}

	return res
}

/*
scopesInUse returns all scopes which are used by at least one construct.
*/
func (ss *scopeStore) scopesInUse() []*data.Scope {
	res := make([]*data.Scope, 0, len(ss.byScope))

	keys := make(map[string]bool)
	for k := range ss.byScope {
		keys[k] = true
	}

	for _, key := range sortedKeys(keys) {
		res = append(res, ss.scopes[key])
	}

	return res
}

func (ss *scopeStore) isTheme(t data.ID) bool {
	return len(ss.byTheme[t]) > 0
}

func (ss *scopeStore) remove(c data.ID) {
	s, ok := ss.scoped[c]
	if !ok {
		return
	}

	delete(ss.scoped, c)

	set := ss.byScope[s.ID()]
	delete(set, c)

	if len(set) == 0 {
		delete(ss.byScope, s.ID())

		for _, t := range s.Themes() {
			delete(ss.byTheme[t], s.ID())
			if len(ss.byTheme[t]) == 0 {
				delete(ss.byTheme, t)
			}
		}
	}
}

// Topic type store
// ================

/*
topicTypeStore holds the type-instance and supertype-subtype relations of topics.
*/
type topicTypeStore struct {
	types      map[data.ID]map[data.ID]bool // Topic -> types
	instances  map[data.ID]map[data.ID]bool // Type -> topics
	supertypes map[data.ID]map[data.ID]bool // Topic -> supertypes
	subtypes   map[data.ID]map[data.ID]bool // Topic -> subtypes
}

func newTopicTypeStore() *topicTypeStore {
	return &topicTypeStore{make(map[data.ID]map[data.ID]bool), make(map[data.ID]map[data.ID]bool),
		make(map[data.ID]map[data.ID]bool), make(map[data.ID]map[data.ID]bool)}
}

func (tts *topicTypeStore) addType(topic data.ID, typ data.ID) bool {
	if tts.types[topic][typ] {
		return false
	}
	addToSet(tts.types, topic, typ)
	addToSet(tts.instances, typ, topic)
	return true
}

func (tts *topicTypeStore) removeType(topic data.ID, typ data.ID) bool {
	if !tts.types[topic][typ] {
		return false
	}
	removeFromSet(tts.types, topic, typ)
	removeFromSet(tts.instances, typ, topic)
	return true
}

func (tts *topicTypeStore) typesOf(topic data.ID) []data.ID {
	return idSet(tts.types[topic])
}

func (tts *topicTypeStore) instancesOf(typ data.ID) []data.ID {
	return idSet(tts.instances[typ])
}

func (tts *topicTypeStore) topicTypes() []data.ID {
	res := make([]data.ID, 0, len(tts.instances))
	for t := range tts.instances {
		res = append(res, t)
	}
	return data.SortedIDs(res)
}

func (tts *topicTypeStore) addSupertype(topic data.ID, st data.ID) bool {
	if tts.supertypes[topic][st] {
		return false
	}
	addToSet(tts.supertypes, topic, st)
	addToSet(tts.subtypes, st, topic)
	return true
}

func (tts *topicTypeStore) removeSupertype(topic data.ID, st data.ID) bool {
	if !tts.supertypes[topic][st] {
		return false
	}
	removeFromSet(tts.supertypes, topic, st)
	removeFromSet(tts.subtypes, st, topic)
	return true
}

func (tts *topicTypeStore) supertypesOf(topic data.ID) []data.ID {
	return idSet(tts.supertypes[topic])
}

func (tts *topicTypeStore) subtypesOf(topic data.ID) []data.ID {
	return idSet(tts.subtypes[topic])
}

// Association store
// =================

/*
associationStore holds associations, their roles and the role players.
*/
type associationStore struct {
	roles   map[data.ID]map[data.ID]bool // Association -> roles
	players map[data.ID]data.ID          // Role -> player
	played  map[data.ID]map[data.ID]bool // Topic -> played roles
}

func newAssociationStore() *associationStore {
	return &associationStore{make(map[data.ID]map[data.ID]bool), make(map[data.ID]data.ID),
		make(map[data.ID]map[data.ID]bool)}
}

func (as *associationStore) addRole(assoc data.ID, role data.ID, player data.ID) {
	addToSet(as.roles, assoc, role)
	as.players[role] = player
	addToSet(as.played, player, role)
}

func (as *associationStore) removeRole(assoc data.ID, role data.ID) {
	removeFromSet(as.roles, assoc, role)
	removeFromSet(as.played, as.players[role], role)
	delete(as.players, role)
}

func (as *associationStore) setPlayer(role data.ID, player data.ID) data.ID {
	old := as.players[role]
	removeFromSet(as.played, old, role)
	as.players[role] = player
	addToSet(as.played, player, role)
	return old
}

func (as *associationStore) playerOf(role data.ID) data.ID {
	return as.players[role]
}

func (as *associationStore) rolesOf(assoc data.ID) []data.ID {
	return idSet(as.roles[assoc])
}

func (as *associationStore) rolesPlayed(topic data.ID) []data.ID {
	return idSet(as.played[topic])
}

func (as *associationStore) isPlayer(topic data.ID) bool {
	return len(as.played[topic]) > 0
}

// Reification store
// =================

/*
reificationStore holds the 1:1 relation between reifiers and reified constructs.
*/
type reificationStore struct {
	reifiers map[data.ID]data.ID // Construct -> reifier
	reified  map[data.ID]data.ID // Reifier -> construct
}

func newReificationStore() *reificationStore {
	return &reificationStore{make(map[data.ID]data.ID), make(map[data.ID]data.ID)}
}

/*
setReifier sets the reifier of a construct. A NoID reifier removes the link.
Returns the old reifier.
*/
func (rs *reificationStore) setReifier(c data.ID, reifier data.ID) data.ID {
	old := rs.reifiers[c]

	if old != data.NoID {
		delete(rs.reified, old)
		delete(rs.reifiers, c)
	}

	if reifier != data.NoID {
		rs.reifiers[c] = reifier
		rs.reified[reifier] = c
	}

	return old
}

func (rs *reificationStore) reifierOf(c data.ID) data.ID {
	return rs.reifiers[c]
}

func (rs *reificationStore) reifiedBy(topic data.ID) data.ID {
	return rs.reified[topic]
}

func (rs *reificationStore) allReified() []data.ID {
	res := make([]data.ID, 0, len(rs.reifiers))
	for c := range rs.reifiers {
		res = append(res, c)
	}
	return data.SortedIDs(res)
}

/*
sortedKeys returns the sorted keys of a string set.
*/
func sortedKeys(set map[string]bool) []string {
	res := make([]string, 0, len(set))
	for k := range set {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
