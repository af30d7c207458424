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
ReificationIndex answers queries about reified constructs and their reifiers.
*/
type ReificationIndex struct {
	*baseIndex
}

/*
NewReificationIndex creates a new reification index.
*/
func NewReificationIndex(tm *topicmap.Manager) *ReificationIndex {
	idx := &ReificationIndex{}

	idx.baseIndex = newBaseIndex("reification", tm, []data.EventKind{data.EventReifierSet},
		idx.invalidateReification, CacheReified, CacheReifiers)

	return idx
}

/*
Reified returns all reified constructs of a given kind.
*/
func (idx *ReificationIndex) Reified(kind data.Kind) (*Result, error) {
	return idx.result(CacheReified, cacheKey(kind), func() []data.ID {
		var res []data.ID

		for _, c := range idx.tm.ReifiedConstructs() {
			if idx.tm.Kind(c) == kind {
				res = append(res, c)
			}
		}

		return res
	})
}

/*
Reifiers returns all topics which reify a construct.
*/
func (idx *ReificationIndex) Reifiers() (*Result, error) {
	return idx.result(CacheReifiers, "", func() []data.ID {
		var res []data.ID

		for _, c := range idx.tm.ReifiedConstructs() {
			res = append(res, idx.tm.Reifier(c))
		}

		return res
	})
}

func (idx *ReificationIndex) invalidateReification(tm *topicmap.Manager, event *data.Event) {
	idx.cache.invalidate(CacheReified, cacheKey(event.ContextKind))
	idx.cache.clear(CacheReifiers)
}
