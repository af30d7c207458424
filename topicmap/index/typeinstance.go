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
TypeInstanceIndex answers queries about topic types and the types of typed
constructs.
*/
type TypeInstanceIndex struct {
	*baseIndex
}

/*
NewTypeInstanceIndex creates a new type-instance index.
*/
func NewTypeInstanceIndex(tm *topicmap.Manager) *TypeInstanceIndex {
	idx := &TypeInstanceIndex{}

	idx.baseIndex = newBaseIndex("typeinstance", tm, []data.EventKind{
		data.EventTopicAdded, data.EventTopicRemoved, data.EventTypeAdded, data.EventTypeRemoved,
		data.EventTypeSet, data.EventNameRemoved, data.EventOccurrenceRemoved,
		data.EventAssociationRemoved, data.EventRoleRemoved,
	}, idx.invalidateTypes, CacheTypes, CacheInstances, CacheTopicTypes, CacheTopicsByTypes,
		CacheTypedConstructs, CacheConstructTypes)

	return idx
}

/*
Types returns the direct types of a topic.
*/
func (idx *TypeInstanceIndex) Types(t data.ID) (*Result, error) {
	t = idx.tm.Resolve(t)

	return idx.result(CacheTypes, cacheKey(t), func() []data.ID {
		return idx.tm.Types(t)
	})
}

/*
Instances returns the direct instances of a topic type.
*/
func (idx *TypeInstanceIndex) Instances(typ data.ID) (*Result, error) {
	typ = idx.tm.Resolve(typ)

	return idx.result(CacheInstances, cacheKey(typ), func() []data.ID {
		return idx.tm.Instances(typ)
	})
}

/*
TopicTypes returns all topics which are used as topic type.
*/
func (idx *TypeInstanceIndex) TopicTypes() (*Result, error) {
	return idx.result(CacheTopicTypes, "", func() []data.ID {
		return idx.tm.TopicTypes()
	})
}

/*
TopicsByTypes returns all topics which are an instance of any of the given
types. If matchAll is set then the topics must be an instance of all given
types. Without types all topics which have no type are returned.
*/
func (idx *TypeInstanceIndex) TopicsByTypes(types []data.ID, matchAll bool) (*Result, error) {
	resolved := make([]data.ID, len(types))
	for i, t := range types {
		resolved[i] = idx.tm.Resolve(t)
	}

	types = data.SortedIDs(resolved)

	return idx.result(CacheTopicsByTypes, cacheKey(types, matchAll), func() []data.ID {
		var res []data.ID

		if len(types) == 0 {
			for _, t := range idx.tm.Topics() {
				if len(idx.tm.Types(t)) == 0 {
					res = append(res, t)
				}
			}
			return res
		}

		counts := make(map[data.ID]int)

		for _, typ := range types {
			for _, inst := range idx.tm.Instances(typ) {
				counts[inst]++
			}
		}

		for t, c := range counts {
			if !matchAll || c == len(types) {
				res = append(res, t)
			}
		}

		return res
	})
}

/*
TypedConstructs returns all constructs of a given kind (name, occurrence,
association or role) which have a given type.
*/
func (idx *TypeInstanceIndex) TypedConstructs(typ data.ID, kind data.Kind) (*Result, error) {
	typ = idx.tm.Resolve(typ)

	return idx.result(CacheTypedConstructs, cacheKey(kind, typ), func() []data.ID {
		return idx.tm.TypedConstructs(typ, kind)
	})
}

/*
ConstructTypes returns all topics which are used as type of constructs of a
given kind.
*/
func (idx *TypeInstanceIndex) ConstructTypes(kind data.Kind) (*Result, error) {
	return idx.result(CacheConstructTypes, cacheKey(kind), func() []data.ID {
		return idx.tm.ConstructTypes(kind)
	})
}

/*
invalidateTypes invalidates all cached results which are affected by an event.
*/
func (idx *TypeInstanceIndex) invalidateTypes(tm *topicmap.Manager, event *data.Event) {
	c := idx.cache

	switch event.Kind {

	case data.EventTopicAdded:

		// A new topic has no type

		c.clear(CacheTopicsByTypes)

	case data.EventTypeAdded, data.EventTypeRemoved:
		typ := eventID(event.NewValue)
		if typ == data.NoID {
			typ = eventID(event.OldValue)
		}

		c.invalidate(CacheTypes, cacheKey(event.Context))
		c.invalidate(CacheInstances, cacheKey(typ))
		c.clear(CacheTopicTypes, CacheTopicsByTypes)

	case data.EventTypeSet:
		kind := event.ContextKind

		c.invalidate(CacheTypedConstructs, cacheKey(kind, eventID(event.NewValue)),
			cacheKey(kind, eventID(event.OldValue)))
		c.invalidate(CacheConstructTypes, cacheKey(kind))

	default:
		snap := removedSnapshot(event)
		if snap == nil {
			return
		}

		if snap.Kind == data.KindTopic {
			keys := []string{cacheKey(snap.ID)}
			for _, t := range snap.Types {
				keys = append(keys, cacheKey(t))
			}

			c.invalidate(CacheTypes, cacheKey(snap.ID))
			c.invalidate(CacheInstances, keys...)
			c.clear(CacheTopicTypes, CacheTopicsByTypes)

			return
		}

		c.invalidate(CacheTypedConstructs, cacheKey(snap.Kind, snap.Type))
		c.invalidate(CacheConstructTypes, cacheKey(snap.Kind))
	}
}
