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
	"strings"
	"sync"

	"github.com/krotik/common/datautil"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
CacheKind identifies a partition of the query cache. Each kind of query has
its own partition which can be invalidated independently.
*/
type CacheKind int

/*
Cache partitions
*/
const (
	CacheTypes CacheKind = iota + 1
	CacheInstances
	CacheTopicTypes
	CacheTopicsByTypes
	CacheTypedConstructs
	CacheConstructTypes
	CacheSupertypes
	CacheSubtypes
	CacheScopes
	CacheScopedConstructs
	CacheThemedConstructs
	CacheThemes
	CacheLiterals
	CacheReified
	CacheReifiers
	CacheItemIdentifiers
	CacheSubjectIdentifiers
	CacheSubjectLocators
)

var cacheKindNames = map[CacheKind]string{
	CacheTypes:              "types",
	CacheInstances:          "instances",
	CacheTopicTypes:         "topictypes",
	CacheTopicsByTypes:      "topicsbytypes",
	CacheTypedConstructs:    "typedconstructs",
	CacheConstructTypes:     "constructtypes",
	CacheSupertypes:         "supertypes",
	CacheSubtypes:           "subtypes",
	CacheScopes:             "scopes",
	CacheScopedConstructs:   "scopedconstructs",
	CacheThemedConstructs:   "themedconstructs",
	CacheThemes:             "themes",
	CacheLiterals:           "literals",
	CacheReified:            "reified",
	CacheReifiers:           "reifiers",
	CacheItemIdentifiers:    "itemidentifiers",
	CacheSubjectIdentifiers: "subjectidentifiers",
	CacheSubjectLocators:    "subjectlocators",
}

/*
String returns the name of this cache kind.
*/
func (k CacheKind) String() string {
	if n, ok := cacheKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("cache(%d)", int(k))
}

/*
cacheKey builds a cache key from a number of parts.
*/
func cacheKey(parts ...interface{}) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = fmt.Sprint(p)
	}
	return strings.Join(strs, ":")
}

/*
cachedResult holds the result of a single query. The result itself is never
modified once it was cached. Sorted views are computed on demand and cached
per comparator.
*/
type cachedResult struct {
	ids    []data.ID            // Constructs of the result
	scopes []*data.Scope        // Scopes of the result (scope queries only)
	sorted map[string][]data.ID // Sorted views of the result
	mutex  *sync.Mutex          // Mutex to protect the sorted views
}

func newCachedResult(ids []data.ID) *cachedResult {
	return &cachedResult{ids, nil, make(map[string][]data.ID), &sync.Mutex{}}
}

/*
cacheTable holds a cache for each cache partition of an index. Each partition
has a generation counter which is increased on every invalidation. Results
which were computed while an invalidation happened are not stored.
*/
type cacheTable struct {
	caches  map[CacheKind]*datautil.MapCache // Caches for each partition
	gens    map[CacheKind]uint64             // Generation of each partition
	maxSize uint64                           // Max number of entries per partition
	maxAge  int64                            // Max age of entries in seconds
	hits    uint64                           // Number of cache hits
	misses  uint64                           // Number of cache misses
	mutex   *sync.Mutex                      // Mutex to protect the table
}

/*
newCacheTable creates a new cache table for a set of partitions.
*/
func newCacheTable(maxSize uint64, maxAge int64, kinds ...CacheKind) *cacheTable {
	ct := &cacheTable{make(map[CacheKind]*datautil.MapCache), make(map[CacheKind]uint64),
		maxSize, maxAge, 0, 0, &sync.Mutex{}}

	for _, k := range kinds {
		ct.caches[k] = datautil.NewMapCache(maxSize, maxAge)
	}

	return ct
}

/*
generation returns the current generation of a partition.
*/
func (ct *cacheTable) generation(kind CacheKind) uint64 {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	return ct.gens[kind]
}

/*
get looks up a cached result.
*/
func (ct *cacheTable) get(kind CacheKind, key string) (*cachedResult, bool) {
	ct.mutex.Lock()
	cache := ct.caches[kind]
	ct.mutex.Unlock()

	if cache != nil {
		if res, ok := cache.Get(key); ok {
			ct.count(true)
			return res.(*cachedResult), true
		}
	}

	ct.count(false)

	return nil, false
}

func (ct *cacheTable) count(hit bool) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	if hit {
		ct.hits++
	} else {
		ct.misses++
	}
}

/*
put stores a result if the partition was not invalidated since the given
generation.
*/
func (ct *cacheTable) put(kind CacheKind, key string, gen uint64, res *cachedResult) bool {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	cache, ok := ct.caches[kind]

	if !ok || ct.gens[kind] != gen {
		return false
	}

	cache.Put(key, res)

	return true
}

/*
contains checks if a result is cached without counting a hit or miss.
*/
func (ct *cacheTable) contains(kind CacheKind, key string) bool {
	ct.mutex.Lock()
	cache := ct.caches[kind]
	ct.mutex.Unlock()

	if cache == nil {
		return false
	}

	_, ok := cache.Get(key)

	return ok
}

/*
invalidate removes specific keys from a partition.
*/
func (ct *cacheTable) invalidate(kind CacheKind, keys ...string) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	cache, ok := ct.caches[kind]
	if !ok {
		return
	}

	ct.gens[kind]++

	for _, k := range keys {
		cache.Remove(k)
	}
}

/*
clear removes all entries from the given partitions.
*/
func (ct *cacheTable) clear(kinds ...CacheKind) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	for _, k := range kinds {
		if _, ok := ct.caches[k]; ok {
			ct.gens[k]++
			ct.caches[k] = datautil.NewMapCache(ct.maxSize, ct.maxAge)
		}
	}
}

/*
clearAll removes all entries from all partitions.
*/
func (ct *cacheTable) clearAll() {
	ct.mutex.Lock()
	kinds := make([]CacheKind, 0, len(ct.caches))
	for k := range ct.caches {
		kinds = append(kinds, k)
	}
	ct.mutex.Unlock()

	ct.clear(kinds...)
}

/*
stats returns the number of cache hits and misses.
*/
func (ct *cacheTable) stats() (uint64, uint64) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	return ct.hits, ct.misses
}
