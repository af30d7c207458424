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
LiteralIndex answers queries about the values of names, occurrences and variants.
*/
type LiteralIndex struct {
	*baseIndex
}

/*
NewLiteralIndex creates a new literal index.
*/
func NewLiteralIndex(tm *topicmap.Manager) *LiteralIndex {
	idx := &LiteralIndex{}

	idx.baseIndex = newBaseIndex("literal", tm, []data.EventKind{
		data.EventValueModified, data.EventNameRemoved, data.EventOccurrenceRemoved,
		data.EventVariantRemoved,
	}, idx.invalidateLiterals, CacheLiterals)

	return idx
}

/*
Names returns all names with a given value.
*/
func (idx *LiteralIndex) Names(value string) (*Result, error) {
	return idx.Literals(data.KindName, value, data.XSDString)
}

/*
Occurrences returns all occurrences with a given value and datatype. An empty
datatype matches all datatypes.
*/
func (idx *LiteralIndex) Occurrences(value string, datatype data.Locator) (*Result, error) {
	return idx.Literals(data.KindOccurrence, value, datatype)
}

/*
Variants returns all variants with a given value and datatype. An empty
datatype matches all datatypes.
*/
func (idx *LiteralIndex) Variants(value string, datatype data.Locator) (*Result, error) {
	return idx.Literals(data.KindVariant, value, datatype)
}

/*
Literals returns all constructs of a given kind with a given value and
datatype. An empty datatype matches all datatypes.
*/
func (idx *LiteralIndex) Literals(kind data.Kind, value string, datatype data.Locator) (*Result, error) {
	return idx.result(CacheLiterals, cacheKey(kind, datatype, value), func() []data.ID {
		var res []data.ID

		for _, c := range idx.tm.Constructs(kind) {
			if lit := idx.tm.Literal(c); lit.Value == value && (datatype == "" || lit.Datatype == datatype) {
				res = append(res, c)
			}
		}

		return res
	})
}

/*
invalidateLiterals invalidates the cached results for the old and the new
value of a changed construct.
*/
func (idx *LiteralIndex) invalidateLiterals(tm *topicmap.Manager, event *data.Event) {
	var kind data.Kind
	var lits []data.Literal

	if event.Kind == data.EventValueModified {
		kind = event.ContextKind

		for _, v := range []interface{}{event.NewValue, event.OldValue} {
			if lit, ok := v.(data.Literal); ok {
				lits = append(lits, lit)
			}
		}

	} else if snap := removedSnapshot(event); snap != nil {
		kind = snap.Kind
		lits = append(lits, data.Literal{Value: snap.Value, Datatype: snap.Datatype})

	} else {
		return
	}

	var keys []string
	for _, lit := range lits {
		keys = append(keys, cacheKey(kind, lit.Datatype, lit.Value), cacheKey(kind, "", lit.Value))
	}

	idx.cache.invalidate(CacheLiterals, keys...)
}
