/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package index

import (
	"fmt"
	"regexp"

	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

/*
IdentityIndex answers queries for constructs whose identifiers match a
regular expression.
*/
type IdentityIndex struct {
	*baseIndex
}

/*
NewIdentityIndex creates a new identity index.
*/
func NewIdentityIndex(tm *topicmap.Manager) *IdentityIndex {
	idx := &IdentityIndex{}

	idx.baseIndex = newBaseIndex("identity", tm, []data.EventKind{
		data.EventItemIdentifierAdded, data.EventItemIdentifierRemoved,
		data.EventSubjectIdentifierAdded, data.EventSubjectIdentifierRemoved,
		data.EventSubjectLocatorAdded, data.EventSubjectLocatorRemoved,
	}, idx.invalidateIdentifiers, CacheItemIdentifiers, CacheSubjectIdentifiers, CacheSubjectLocators)

	return idx
}

/*
ConstructsByItemIdentifier returns all constructs which have an item
identifier matching a given pattern.
*/
func (idx *IdentityIndex) ConstructsByItemIdentifier(pattern string) (*Result, error) {
	return idx.match(CacheItemIdentifiers, pattern, idx.tm.AllItemIdentifiers, idx.tm.ConstructByItemIdentifier)
}

/*
TopicsBySubjectIdentifier returns all topics which have a subject identifier
matching a given pattern.
*/
func (idx *IdentityIndex) TopicsBySubjectIdentifier(pattern string) (*Result, error) {
	return idx.match(CacheSubjectIdentifiers, pattern, idx.tm.AllSubjectIdentifiers, idx.tm.TopicBySubjectIdentifier)
}

/*
TopicsBySubjectLocator returns all topics which have a subject locator
matching a given pattern.
*/
func (idx *IdentityIndex) TopicsBySubjectLocator(pattern string) (*Result, error) {
	return idx.match(CacheSubjectLocators, pattern, idx.tm.AllSubjectLocators, idx.tm.TopicBySubjectLocator)
}

/*
ConstructsByIdentifier returns all constructs which have any identifier
matching a given pattern.
*/
func (idx *IdentityIndex) ConstructsByIdentifier(pattern string) (*Result, error) {
	var ids []data.ID

	for _, f := range []func(string) (*Result, error){idx.ConstructsByItemIdentifier,
		idx.TopicsBySubjectIdentifier, idx.TopicsBySubjectLocator} {

		res, err := f(pattern)
		if err != nil {
			return nil, err
		}

		ids = append(ids, res.res.ids...)
	}

	return &Result{idx.tm, newCachedResult(data.SortedIDs(ids))}, nil
}

/*
match returns all constructs which are identified by a locator matching a
given pattern.
*/
func (idx *IdentityIndex) match(kind CacheKind, pattern string, locators func() []data.Locator,
	lookup func(data.Locator) data.ID) (*Result, error) {

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &util.TopicMapError{Type: util.ErrModelConstraint,
			Detail: fmt.Sprintf("Invalid pattern %v: %v", pattern, err)}
	}

	return idx.result(kind, pattern, func() []data.ID {
		var res []data.ID

		for _, loc := range locators() {
			if re.MatchString(string(loc)) {
				res = append(res, lookup(loc))
			}
		}

		return res
	})
}

func (idx *IdentityIndex) invalidateIdentifiers(tm *topicmap.Manager, event *data.Event) {
	switch event.Kind {
	case data.EventItemIdentifierAdded, data.EventItemIdentifierRemoved:
		idx.cache.clear(CacheItemIdentifiers)
	case data.EventSubjectIdentifierAdded, data.EventSubjectIdentifierRemoved:
		idx.cache.clear(CacheSubjectIdentifiers)
	default:
		idx.cache.clear(CacheSubjectLocators)
	}
}
