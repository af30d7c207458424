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
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
SupertypeSubtypeIndex answers queries about the transitive supertype-subtype
hierarchy of topics.
*/
type SupertypeSubtypeIndex struct {
	*baseIndex
}

/*
NewSupertypeSubtypeIndex creates a new supertype-subtype index.
*/
func NewSupertypeSubtypeIndex(tm *topicmap.Manager) *SupertypeSubtypeIndex {
	idx := &SupertypeSubtypeIndex{}

	idx.baseIndex = newBaseIndex("supertypesubtype", tm, []data.EventKind{
		data.EventSupertypeAdded, data.EventSupertypeRemoved, data.EventTopicRemoved,
	}, idx.invalidateHierarchy, CacheSupertypes, CacheSubtypes)

	return idx
}

/*
Supertypes returns all direct and indirect supertypes of a topic.
*/
func (idx *SupertypeSubtypeIndex) Supertypes(t data.ID) (*Result, error) {
	t = idx.tm.Resolve(t)

	return idx.result(CacheSupertypes, cacheKey(t), func() []data.ID {
		return closure(t, idx.tm.Supertypes)
	})
}

/*
Subtypes returns all direct and indirect subtypes of a topic.
*/
func (idx *SupertypeSubtypeIndex) Subtypes(t data.ID) (*Result, error) {
	t = idx.tm.Resolve(t)

	return idx.result(CacheSubtypes, cacheKey(t), func() []data.ID {
		return closure(t, idx.tm.Subtypes)
	})
}

/*
IsSubtypeOf checks if a topic is a direct or indirect subtype of another topic.
*/
func (idx *SupertypeSubtypeIndex) IsSubtypeOf(t data.ID, st data.ID) (bool, error) {
	res, err := idx.Supertypes(t)
	if err != nil {
		return false, err
	}

	return res.Contains(idx.tm.Resolve(st)), nil
}

/*
closure follows a relation transitively. The start topic is not part of the
result unless the relation contains a cycle back to it.
*/
func closure(start data.ID, next func(data.ID) []data.ID) []data.ID {
	var res []data.ID

	visited := make(map[data.ID]bool)
	queue := next(start)

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if visited[t] {
			continue
		}

		visited[t] = true
		res = append(res, t)
		queue = append(queue, next(t)...)
	}

	return res
}

/*
invalidateHierarchy invalidates the supertypes of the subtype and all its
subtypes as well as the subtypes of the supertype and all its supertypes.
*/
func (idx *SupertypeSubtypeIndex) invalidateHierarchy(tm *topicmap.Manager, event *data.Event) {
	var subs, sups []data.ID

	switch event.Kind {

	case data.EventSupertypeAdded, data.EventSupertypeRemoved:
		st := eventID(event.NewValue)
		if st == data.NoID {
			st = eventID(event.OldValue)
		}

		subs = append(closure(event.Context, tm.Subtypes), event.Context)
		sups = append(closure(st, tm.Supertypes), st)

	case data.EventTopicRemoved:
		if snap := removedSnapshot(event); snap != nil {
			subs = []data.ID{snap.ID}
			sups = []data.ID{snap.ID}
		}
	}

	keys := func(ids []data.ID) []string {
		res := make([]string, len(ids))
		for i, id := range ids {
			res[i] = cacheKey(id)
		}
		return res
	}

	idx.cache.invalidate(CacheSupertypes, keys(subs)...)
	idx.cache.invalidate(CacheSubtypes, keys(sups)...)
}
