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
Package revision contains the revision log of a topic map.

Every logical operation on a topic map (for example adding a name or merging
two topics) creates at most one revision. Each elementary change of the
operation is appended to the changeset of the revision. Revisions are chained
in creation order and can be looked up by id, by tag or by time.

Constructs which are removed are stored as snapshots so the history of a
construct can still be described after it is gone.
*/
package revision

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/krotik/topicdb/topicmap/data"
)

/*
Change is an elementary change of a revision.
*/
type Change struct {
	Kind     data.EventKind // Kind of the change
	Context  data.ID        // Changed construct
	NewValue interface{}    // New value
	OldValue interface{}    // Old value
}

/*
String returns a string representation of this change.
*/
func (c Change) String() string {
	return fmt.Sprintf("%v %v (new: %v old: %v)", c.Kind, c.Context, c.NewValue, c.OldValue)
}

/*
Revision is a single revision of a topic map. All mutable attributes of a
revision are accessed through the revision store.
*/
type Revision struct {
	id        uint64
	timestamp time.Time
	tag       string
	metadata  map[string]string
	previous  *Revision
	next      *Revision
	changes   []Change
}

/*
ID returns the id of this revision.
*/
func (r *Revision) ID() uint64 {
	return r.id
}

/*
Timestamp returns the creation time of this revision.
*/
func (r *Revision) Timestamp() time.Time {
	return r.timestamp
}

/*
String returns a string representation of this revision.
*/
func (r *Revision) String() string {
	return fmt.Sprintf("Revision %v", r.id)
}

/*
Store is the revision log of a topic map.
*/
type Store struct {
	enabled   bool                       // Flag if history is recorded
	counter   uint64                     // Revision id counter
	first     *Revision                  // First revision
	last      *Revision                  // Last revision
	revisions map[uint64]*Revision       // Revisions by id
	tags      map[string]*Revision       // Revisions by tag
	history   map[data.ID][]*Revision    // Revisions which touched a construct
	snapshots map[data.ID]*data.Snapshot // Snapshots of removed constructs
	mutex     *sync.RWMutex              // Lock for the store
	now       func() time.Time           // Clock of the store
}

/*
NewStore creates a new revision store. If history is disabled CreateRevision
returns nil and all changes are discarded.
*/
func NewStore(enabled bool) *Store {
	return &Store{enabled, 0, nil, nil, make(map[uint64]*Revision),
		make(map[string]*Revision), make(map[data.ID][]*Revision),
		make(map[data.ID]*data.Snapshot), &sync.RWMutex{}, time.Now}
}

/*
Enabled returns if this store records history.
*/
func (s *Store) Enabled() bool {
	return s.enabled
}

/*
CreateRevision creates a new revision.
*/
func (s *Store) CreateRevision() *Revision {
	if !s.enabled {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.counter++

	rev := &Revision{
		id:        s.counter,
		timestamp: s.now(),
		metadata:  make(map[string]string),
		previous:  s.last,
	}

	if s.last != nil {
		s.last.next = rev
	} else {
		s.first = rev
	}

	s.last = rev
	s.revisions[rev.id] = rev

	return rev
}

/*
StoreChange appends an elementary change to a revision. Storing a change for
a nil revision does nothing.
*/
func (s *Store) StoreChange(rev *Revision, kind data.EventKind, ctx data.ID,
	newValue interface{}, oldValue interface{}) {

	if rev == nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rev.changes = append(rev.changes, Change{kind, ctx, newValue, oldValue})

	s.addHistory(ctx, rev)

	for _, v := range []interface{}{newValue, oldValue} {
		switch val := v.(type) {
		case data.ID:
			s.addHistory(val, rev)
		case *data.Snapshot:
			s.addHistory(val.ID, rev)
		}
	}
}

/*
addHistory records that a revision touched a given construct.
*/
func (s *Store) addHistory(id data.ID, rev *Revision) {
	if id == data.NoID {
		return
	}

	revs := s.history[id]

	if l := len(revs); l > 0 && revs[l-1] == rev {
		return
	}

	s.history[id] = append(revs, rev)
}

/*
StoreSnapshot stores the snapshot of a removed construct.
*/
func (s *Store) StoreSnapshot(snap *data.Snapshot) {
	if !s.enabled || snap == nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.snapshots[snap.ID] = snap
}

/*
Snapshot returns the snapshot of a removed construct.
*/
func (s *Store) Snapshot(id data.ID) *data.Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.snapshots[id]
}

/*
First returns the first revision.
*/
func (s *Store) First() *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.first
}

/*
Last returns the last revision.
*/
func (s *Store) Last() *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.last
}

/*
Len returns the number of revisions.
*/
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.revisions)
}

/*
Revision returns a revision by its id.
*/
func (s *Store) Revision(id uint64) *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.revisions[id]
}

/*
Revisions returns all revisions in creation order.
*/
func (s *Store) Revisions() []*Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	res := make([]*Revision, 0, len(s.revisions))

	for r := s.first; r != nil; r = r.next {
		res = append(res, r)
	}

	return res
}

/*
Previous returns the revision before a given revision.
*/
func (s *Store) Previous(rev *Revision) *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return rev.previous
}

/*
Next returns the revision after a given revision.
*/
func (s *Store) Next(rev *Revision) *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return rev.next
}

/*
Changeset returns a copy of the changes of a given revision.
*/
func (s *Store) Changeset(rev *Revision) []Change {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]Change{}, rev.changes...)
}

/*
Timestamp returns the creation time of a given revision.
*/
func (s *Store) Timestamp(rev *Revision) time.Time {
	return rev.timestamp
}

/*
RevisionAt returns the last revision which was created at or before a given time.
*/
func (s *Store) RevisionAt(t time.Time) *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var res *Revision

	for r := s.first; r != nil && !r.timestamp.After(t); r = r.next {
		res = r
	}

	return res
}

/*
SetTag tags a revision. A tag identifies exactly one revision; tagging another
revision with the same tag moves the tag.
*/
func (s *Store) SetTag(rev *Revision, tag string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, ok := s.tags[rev.tag]; ok && old == rev {
		delete(s.tags, rev.tag)
	}

	if old, ok := s.tags[tag]; ok {
		old.tag = ""
	}

	rev.tag = tag

	if tag != "" {
		s.tags[tag] = rev
	}
}

/*
Tag returns the tag of a given revision.
*/
func (s *Store) Tag(rev *Revision) string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return rev.tag
}

/*
RevisionByTag returns a revision by its tag.
*/
func (s *Store) RevisionByTag(tag string) *Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.tags[tag]
}

/*
SetMetadata sets a metadata value of a given revision.
*/
func (s *Store) SetMetadata(rev *Revision, key string, value string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rev.metadata[key] = value
}

/*
Metadata returns a metadata value of a given revision.
*/
func (s *Store) Metadata(rev *Revision, key string) (string, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	v, ok := rev.metadata[key]

	return v, ok
}

/*
MetadataKeys returns all metadata keys of a given revision.
*/
func (s *Store) MetadataKeys(rev *Revision) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	res := make([]string, 0, len(rev.metadata))
	for k := range rev.metadata {
		res = append(res, k)
	}
	sort.Strings(res)

	return res
}

/*
RevisionsOf returns all revisions which changed a given construct in creation
order.
*/
func (s *Store) RevisionsOf(id data.ID) []*Revision {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return append([]*Revision{}, s.history[id]...)
}

/*
Clear removes all revisions and snapshots.
*/
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.first = nil
	s.last = nil
	s.revisions = make(map[uint64]*Revision)
	s.tags = make(map[string]*Revision)
	s.history = make(map[data.ID][]*Revision)
	s.snapshots = make(map[data.ID]*data.Snapshot)
}
