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
	"github.com/krotik/topicdb/topicmap/data"
)

/*
constructEntry is the arena entry of a single construct.
*/
type constructEntry struct {
	kind   data.Kind // Kind of the construct
	parent data.ID   // Owning construct
}

/*
identityStore is the authority for construct identity. It holds all
constructs and their identifiers and resolves IDs of merged topics.
*/
type identityStore struct {
	counter    data.ID                        // Construct id counter
	constructs map[data.ID]*constructEntry    // All existing constructs
	redirects  map[data.ID]data.ID            // Merged topic -> surviving topic
	redirected map[data.ID][]data.ID          // Surviving topic -> merged topics
	byKind     map[data.Kind]map[data.ID]bool // Constructs per kind

	itemIdentifiers    map[data.Locator]data.ID // Item identifier -> construct
	subjectIdentifiers map[data.Locator]data.ID // Subject identifier -> topic
	subjectLocators    map[data.Locator]data.ID // Subject locator -> topic

	iis map[data.ID]map[data.Locator]bool // Construct -> item identifiers
	sis map[data.ID]map[data.Locator]bool // Topic -> subject identifiers
	sls map[data.ID]map[data.Locator]bool // Topic -> subject locators
}

/*
newIdentityStore creates a new identity store.
*/
func newIdentityStore() *identityStore {
	return &identityStore{0, make(map[data.ID]*constructEntry), make(map[data.ID]data.ID),
		make(map[data.ID][]data.ID),
		make(map[data.Kind]map[data.ID]bool), make(map[data.Locator]data.ID),
		make(map[data.Locator]data.ID), make(map[data.Locator]data.ID),
		make(map[data.ID]map[data.Locator]bool), make(map[data.ID]map[data.Locator]bool),
		make(map[data.ID]map[data.Locator]bool)}
}

/*
newConstruct registers a new construct and returns its id.
*/
func (is *identityStore) newConstruct(kind data.Kind, parent data.ID) data.ID {
	is.counter++

	id := is.counter

	is.constructs[id] = &constructEntry{kind, parent}

	kinds, ok := is.byKind[kind]
	if !ok {
		kinds = make(map[data.ID]bool)
		is.byKind[kind] = kinds
	}
	kinds[id] = true

	return id
}

/*
resolve follows merge redirects. Returns NoID if the construct does not exist.
*/
func (is *identityStore) resolve(id data.ID) data.ID {
	for i := 0; i < len(is.redirects)+1; i++ {
		if _, ok := is.constructs[id]; ok {
			return id
		}

		next, ok := is.redirects[id]
		if !ok {
			break
		}

		id = next
	}

	return data.NoID
}

/*
redirect records that a merged topic has been replaced by another topic.
Existing redirects to the merged topic are compressed so every redirect points
to a surviving topic.
*/
func (is *identityStore) redirect(from data.ID, to data.ID) {
	merged := append(is.redirected[from], from)
	delete(is.redirected, from)

	for _, k := range merged {
		is.redirects[k] = to
	}

	is.redirected[to] = append(is.redirected[to], merged...)
}

/*
exists checks if a construct exists.
*/
func (is *identityStore) exists(id data.ID) bool {
	_, ok := is.constructs[id]
	return ok
}

/*
kind returns the kind of a construct.
*/
func (is *identityStore) kind(id data.ID) data.Kind {
	if e, ok := is.constructs[id]; ok {
		return e.kind
	}
	return data.KindUnknown
}

/*
parent returns the parent of a construct.
*/
func (is *identityStore) parent(id data.ID) data.ID {
	if e, ok := is.constructs[id]; ok {
		return e.parent
	}
	return data.NoID
}

/*
all returns all constructs of a given kind.
*/
func (is *identityStore) all(kind data.Kind) []data.ID {
	return idSet(is.byKind[kind])
}

/*
count returns the number of constructs of a given kind.
*/
func (is *identityStore) count(kind data.Kind) int {
	return len(is.byKind[kind])
}

/*
remove removes a construct and all its identifiers.
*/
func (is *identityStore) remove(id data.ID) {
	e, ok := is.constructs[id]
	if !ok {
		return
	}

	for loc := range is.iis[id] {
		delete(is.itemIdentifiers, loc)
	}
	for loc := range is.sis[id] {
		delete(is.subjectIdentifiers, loc)
	}
	for loc := range is.sls[id] {
		delete(is.subjectLocators, loc)
	}

	delete(is.iis, id)
	delete(is.sis, id)
	delete(is.sls, id)
	delete(is.byKind[e.kind], id)
	delete(is.constructs, id)
}

// Identifier handling
// ===================

/*
addLocator adds a locator to a lookup and a reverse lookup table.
*/
func addLocator(lookup map[data.Locator]data.ID, reverse map[data.ID]map[data.Locator]bool,
	id data.ID, loc data.Locator) {

	lookup[loc] = id

	locs, ok := reverse[id]
	if !ok {
		locs = make(map[data.Locator]bool)
		reverse[id] = locs
	}
	locs[loc] = true
}

/*
removeLocator removes a locator from a lookup and a reverse lookup table.
*/
func removeLocator(lookup map[data.Locator]data.ID, reverse map[data.ID]map[data.Locator]bool,
	id data.ID, loc data.Locator) bool {

	if lookup[loc] != id {
		return false
	}

	delete(lookup, loc)
	delete(reverse[id], loc)

	if len(reverse[id]) == 0 {
		delete(reverse, id)
	}

	return true
}

/*
locatorList returns a sorted list of locators.
*/
func locatorList(locs map[data.Locator]bool) []data.Locator {
	res := make([]data.Locator, 0, len(locs))
	for l := range locs {
		res = append(res, l)
	}
	return data.SortLocators(res)
}

func (is *identityStore) addItemIdentifier(id data.ID, loc data.Locator) {
	addLocator(is.itemIdentifiers, is.iis, id, loc)
}

func (is *identityStore) removeItemIdentifier(id data.ID, loc data.Locator) bool {
	return removeLocator(is.itemIdentifiers, is.iis, id, loc)
}

func (is *identityStore) byItemIdentifier(loc data.Locator) data.ID {
	return is.itemIdentifiers[loc]
}

func (is *identityStore) itemIdentifiersOf(id data.ID) []data.Locator {
	return locatorList(is.iis[id])
}

func (is *identityStore) addSubjectIdentifier(id data.ID, loc data.Locator) {
	addLocator(is.subjectIdentifiers, is.sis, id, loc)
}

func (is *identityStore) removeSubjectIdentifier(id data.ID, loc data.Locator) bool {
	return removeLocator(is.subjectIdentifiers, is.sis, id, loc)
}

func (is *identityStore) bySubjectIdentifier(loc data.Locator) data.ID {
	return is.subjectIdentifiers[loc]
}

func (is *identityStore) subjectIdentifiersOf(id data.ID) []data.Locator {
	return locatorList(is.sis[id])
}

func (is *identityStore) addSubjectLocator(id data.ID, loc data.Locator) {
	addLocator(is.subjectLocators, is.sls, id, loc)
}

func (is *identityStore) removeSubjectLocator(id data.ID, loc data.Locator) bool {
	return removeLocator(is.subjectLocators, is.sls, id, loc)
}

func (is *identityStore) bySubjectLocator(loc data.Locator) data.ID {
	return is.subjectLocators[loc]
}

func (is *identityStore) subjectLocatorsOf(id data.ID) []data.Locator {
	return locatorList(is.sls[id])
}

/*
allItemIdentifiers returns all item identifiers in use.
*/
func (is *identityStore) allItemIdentifiers() []data.Locator {
	return lookupKeys(is.itemIdentifiers)
}

/*
allSubjectIdentifiers returns all subject identifiers in use.
*/
func (is *identityStore) allSubjectIdentifiers() []data.Locator {
	return lookupKeys(is.subjectIdentifiers)
}

/*
allSubjectLocators returns all subject locators in use.
*/
func (is *identityStore) allSubjectLocators() []data.Locator {
	return lookupKeys(is.subjectLocators)
}

func lookupKeys(lookup map[data.Locator]data.ID) []data.Locator {
	res := make([]data.Locator, 0, len(lookup))
	for l := range lookup {
		res = append(res, l)
	}
	return data.SortLocators(res)
}

/*
idSet returns the sorted members of an id set.
*/
func idSet(set map[data.ID]bool) []data.ID {
	res := make([]data.ID, 0, len(set))
	for id := range set {
		res = append(res, id)
	}
	return data.SortedIDs(res)
}

/*
addToSet adds an id to a set in a map of sets.
*/
func addToSet(sets map[data.ID]map[data.ID]bool, key data.ID, id data.ID) {
	set, ok := sets[key]
	if !ok {
		set = make(map[data.ID]bool)
		sets[key] = set
	}
	set[id] = true
}

/*
removeFromSet removes an id from a set in a map of sets.
*/
func removeFromSet(sets map[data.ID]map[data.ID]bool, key data.ID, id data.ID) {
	if set, ok := sets[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(sets, key)
		}
	}
}
