/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package index contains cached query indexes for topic maps.

Each index answers a family of queries from the stores of a topic map and
caches every distinct answer. An index registers itself as a listener of the
topic map when it is opened and invalidates exactly the cached answers which
are affected by a change. Cached answers are returned as immutable results
which support paging and sorted views.
*/
package index

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

/*
CacheMaxSize is the maximum number of cached results per cache partition
(0 means unlimited).
*/
var CacheMaxSize uint64 = 1000

/*
CacheMaxAge is the maximum age of cached results in seconds (0 means unlimited).
*/
var CacheMaxAge int64

/*
indexCounter is used to give every index a unique listener name.
*/
var indexCounter uint64

/*
baseIndex data structure
*/
type baseIndex struct {
	name       string                                        // Listener name of the index
	tm         *topicmap.Manager                             // Indexed topic map
	cache      *cacheTable                                   // Cached results
	handles    []data.EventKind                              // Events which affect the index
	invalidate func(tm *topicmap.Manager, event *data.Event) // Invalidation function
	open       bool                                          // Flag if the index is open
	mutex      *sync.RWMutex                                 // Mutex to protect the open flag
}

/*
newBaseIndex creates a new closed index.
*/
func newBaseIndex(kind string, tm *topicmap.Manager, handles []data.EventKind,
	invalidate func(*topicmap.Manager, *data.Event), kinds ...CacheKind) *baseIndex {

	return &baseIndex{
		name:       fmt.Sprintf("index.%v.%v", kind, atomic.AddUint64(&indexCounter, 1)),
		tm:         tm,
		cache:      newCacheTable(CacheMaxSize, CacheMaxAge, kinds...),
		handles:    handles,
		invalidate: invalidate,
		mutex:      &sync.RWMutex{},
	}
}

/*
Name returns the name of this index.
*/
func (bi *baseIndex) Name() string {
	return bi.name
}

/*
Open opens the index. The index starts to listen to changes of the topic map.
*/
func (bi *baseIndex) Open() error {
	bi.mutex.Lock()
	defer bi.mutex.Unlock()

	if !bi.open {
		bi.cache.clearAll()
		bi.tm.AddListener(&indexListener{bi})
		bi.open = true

		topicmap.LogDebug("Opened index ", bi.name)
	}

	return nil
}

/*
Close closes the index. All cached results are discarded.
*/
func (bi *baseIndex) Close() error {
	bi.mutex.Lock()
	defer bi.mutex.Unlock()

	if bi.open {
		bi.tm.RemoveListener(bi.name)
		bi.cache.clearAll()
		bi.open = false

		topicmap.LogDebug("Closed index ", bi.name)
	}

	return nil
}

/*
IsOpen returns if the index is open.
*/
func (bi *baseIndex) IsOpen() bool {
	bi.mutex.RLock()
	defer bi.mutex.RUnlock()

	return bi.open
}

/*
Reindex discards all cached results.
*/
func (bi *baseIndex) Reindex() error {
	if !bi.IsOpen() {
		return bi.closedError()
	}

	bi.cache.clearAll()

	return nil
}

/*
Stats returns the number of cache hits and misses of this index.
*/
func (bi *baseIndex) Stats() (uint64, uint64) {
	return bi.cache.stats()
}

func (bi *baseIndex) closedError() error {
	return &util.TopicMapError{Type: util.ErrClosed, Detail: fmt.Sprintf("Index %v is closed", bi.name)}
}

/*
query returns a cached result or computes and caches it.
*/
func (bi *baseIndex) query(kind CacheKind, key string, compute func() *cachedResult) (*cachedResult, error) {
	if !bi.IsOpen() {
		return nil, bi.closedError()
	}

	if res, ok := bi.cache.get(kind, key); ok {
		return res, nil
	}

	gen := bi.cache.generation(kind)
	res := compute()

	bi.cache.put(kind, key, gen, res)

	return res, nil
}

/*
result returns a cached sorted list of constructs as a result.
*/
func (bi *baseIndex) result(kind CacheKind, key string, compute func() []data.ID) (*Result, error) {
	res, err := bi.query(kind, key, func() *cachedResult {
		return newCachedResult(data.SortedIDs(compute()))
	})

	if err != nil {
		return nil, err
	}

	return &Result{bi.tm, res}, nil
}

/*
scopeResult returns a cached list of scopes.
*/
func (bi *baseIndex) scopeResult(kind CacheKind, key string, compute func() []*data.Scope) ([]*data.Scope, error) {
	res, err := bi.query(kind, key, func() *cachedResult {
		cr := newCachedResult(nil)
		cr.scopes = compute()
		return cr
	})

	if err != nil {
		return nil, err
	}

	return append([]*data.Scope{}, res.scopes...), nil
}

/*
indexListener forwards change events of a topic map to an index.
*/
type indexListener struct {
	bi *baseIndex
}

func (l *indexListener) Name() string {
	return l.bi.name
}

func (l *indexListener) Handles() []data.EventKind {
	return l.bi.handles
}

func (l *indexListener) Handle(tm *topicmap.Manager, event *data.Event) error {
	l.bi.invalidate(tm, event)
	return nil
}

/*
removedSnapshot returns the snapshot of a removal event or nil.
*/
func removedSnapshot(event *data.Event) *data.Snapshot {
	snap, _ := event.OldValue.(*data.Snapshot)
	return snap
}

/*
eventID returns the ID value of an event.
*/
func eventID(v interface{}) data.ID {
	id, _ := v.(data.ID)
	return id
}

// Results
// =======

/*
Result is an immutable query result.
*/
type Result struct {
	tm  *topicmap.Manager // Topic map of the result
	res *cachedResult     // Cached result
}

/*
Size returns the number of constructs in the result.
*/
func (r *Result) Size() int {
	return len(r.res.ids)
}

/*
IDs returns all constructs of the result.
*/
func (r *Result) IDs() []data.ID {
	return append([]data.ID{}, r.res.ids...)
}

/*
Contains checks if the result contains a given construct.
*/
func (r *Result) Contains(id data.ID) bool {
	i := sort.Search(len(r.res.ids), func(i int) bool { return r.res.ids[i] >= id })
	return i < len(r.res.ids) && r.res.ids[i] == id
}

/*
Page returns a page of the result. A negative limit returns all constructs
from the offset onwards.
*/
func (r *Result) Page(offset int, limit int) []data.ID {
	return page(r.res.ids, offset, limit)
}

/*
Sorted returns the result sorted by a given comparator.
*/
func (r *Result) Sorted(c Comparator) []data.ID {
	return append([]data.ID{}, r.sortedView(c)...)
}

/*
SortedPage returns a page of the result sorted by a given comparator.
*/
func (r *Result) SortedPage(c Comparator, offset int, limit int) []data.ID {
	return page(r.sortedView(c), offset, limit)
}

/*
sortedView returns the cached sorted view of the result for a comparator.
*/
func (r *Result) sortedView(c Comparator) []data.ID {
	cr := r.res

	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	if s, ok := cr.sorted[c.Name()]; ok {
		return s
	}

	s := append([]data.ID{}, cr.ids...)

	sort.SliceStable(s, func(i, j int) bool {
		return c.Less(r.tm, s[i], s[j])
	})

	cr.sorted[c.Name()] = s

	return s
}

/*
page returns a copy of a part of a list. Offset and limit are clamped into
the bounds of the list.
*/
func page(ids []data.ID, offset int, limit int) []data.ID {
	size := len(ids)

	if offset < 0 {
		offset = 0
	} else if offset > size {
		offset = size
	}

	end := size
	if limit >= 0 && offset+limit < size {
		end = offset + limit
	}

	return append([]data.ID{}, ids[offset:end]...)
}

// Comparators
// ===========

/*
Comparator defines an order of constructs. Sorted views are cached per
comparator name.
*/
type Comparator interface {

	/*
	   Name returns the unique name of the comparator.
	*/
	Name() string

	/*
	   Less returns if construct a should be ordered before construct b.
	*/
	Less(tm *topicmap.Manager, a data.ID, b data.ID) bool
}

/*
NewComparator creates a new comparator from a function.
*/
func NewComparator(name string, less func(tm *topicmap.Manager, a data.ID, b data.ID) bool) Comparator {
	return &funcComparator{name, less}
}

type funcComparator struct {
	name string
	less func(tm *topicmap.Manager, a data.ID, b data.ID) bool
}

func (c *funcComparator) Name() string {
	return c.name
}

func (c *funcComparator) Less(tm *topicmap.Manager, a data.ID, b data.ID) bool {
	return c.less(tm, a, b)
}

/*
ByID orders constructs by ID in descending order (newest first).
*/
var ByID = NewComparator("id.desc", func(tm *topicmap.Manager, a data.ID, b data.ID) bool {
	return a > b
})

/*
ByValue orders names, occurrences and variants by value and then by ID.
*/
var ByValue = NewComparator("value", func(tm *topicmap.Manager, a data.ID, b data.ID) bool {
	va, vb := tm.Value(a), tm.Value(b)
	if va != vb {
		return va < vb
	}
	return a < b
})

/*
ByName orders topics by their lexicographically smallest name and then by ID.
Topics without a name are ordered last.
*/
var ByName = NewComparator("name", func(tm *topicmap.Manager, a data.ID, b data.ID) bool {
	na, oka := smallestName(tm, a)
	nb, okb := smallestName(tm, b)

	if oka != okb {
		return oka
	} else if na != nb {
		return na < nb
	}

	return a < b
})

func smallestName(tm *topicmap.Manager, t data.ID) (string, bool) {
	var res string

	names := tm.Names(t)

	for i, n := range names {
		if v := tm.Value(n); i == 0 || v < res {
			res = v
		}
	}

	return res, len(names) > 0
}

// Index bundle
// ============

/*
Indexes bundles all indexes of a topic map.
*/
type Indexes struct {
	TypeInstance     *TypeInstanceIndex
	SupertypeSubtype *SupertypeSubtypeIndex
	Scoped           *ScopedIndex
	Literal          *LiteralIndex
	Reification      *ReificationIndex
	Identity         *IdentityIndex
}

/*
NewIndexes creates all indexes for a topic map. The indexes are not yet open.
*/
func NewIndexes(tm *topicmap.Manager) *Indexes {
	return &Indexes{
		NewTypeInstanceIndex(tm),
		NewSupertypeSubtypeIndex(tm),
		NewScopedIndex(tm),
		NewLiteralIndex(tm),
		NewReificationIndex(tm),
		NewIdentityIndex(tm),
	}
}

/*
all returns all indexes of the bundle.
*/
func (ix *Indexes) all() []*baseIndex {
	return []*baseIndex{ix.TypeInstance.baseIndex, ix.SupertypeSubtype.baseIndex,
		ix.Scoped.baseIndex, ix.Literal.baseIndex, ix.Reification.baseIndex, ix.Identity.baseIndex}
}

/*
Open opens all indexes.
*/
func (ix *Indexes) Open() error {
	for _, i := range ix.all() {
		if err := i.Open(); err != nil {
			return err
		}
	}
	return nil
}

/*
Close closes all indexes.
*/
func (ix *Indexes) Close() error {
	for _, i := range ix.all() {
		if err := i.Close(); err != nil {
			return err
		}
	}
	return nil
}

/*
Stats returns the cache hits and misses of all indexes.
*/
func (ix *Indexes) Stats() map[string][2]uint64 {
	res := make(map[string][2]uint64)

	for _, i := range ix.all() {
		hits, misses := i.Stats()
		res[i.name] = [2]uint64{hits, misses}
	}

	return res
}
