/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package revision

import (
	"fmt"
	"testing"
	"time"

	"github.com/krotik/topicdb/topicmap/data"
)

func TestDisabledStore(t *testing.T) {
	s := NewStore(false)

	rev := s.CreateRevision()

	if rev != nil || s.Enabled() {
		t.Error("Disabled store should not create revisions")
		return
	}

	s.StoreChange(rev, data.EventTopicAdded, 1, data.ID(2), nil)
	s.StoreSnapshot(&data.Snapshot{ID: 2})

	if s.Len() != 0 || s.First() != nil || s.Snapshot(2) != nil {
		t.Error("Disabled store should not record anything")
		return
	}
}

func TestRevisionLog(t *testing.T) {
	s := NewStore(true)

	clock := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	r1 := s.CreateRevision()
	s.StoreChange(r1, data.EventTopicAdded, 1, data.ID(2), nil)
	s.StoreChange(r1, data.EventSubjectIdentifierAdded, 2, data.Locator("si:foo"), nil)

	r2 := s.CreateRevision()
	s.StoreChange(r2, data.EventNameAdded, 2, data.ID(3), nil)

	r3 := s.CreateRevision()
	snap := &data.Snapshot{ID: 3, Kind: data.KindName, Parent: 2}
	s.StoreSnapshot(snap)
	s.StoreChange(r3, data.EventNameRemoved, 2, nil, snap)

	if s.Len() != 3 || s.First() != r1 || s.Last() != r3 || s.Revision(2) != r2 {
		t.Error("Unexpected revisions")
		return
	}

	if s.Previous(r1) != nil || s.Previous(r2) != r1 || s.Next(r2) != r3 || s.Next(r3) != nil {
		t.Error("Unexpected revision chain")
		return
	}

	if res := fmt.Sprint(s.Revisions()); res != "[Revision 1 Revision 2 Revision 3]" {
		t.Error("Unexpected result:", res)
		return
	}

	cs := s.Changeset(r1)

	if res := fmt.Sprint(cs); res != "[topic.added 1 (new: 2 old: <nil>) subjectidentifier.added 2 (new: si:foo old: <nil>)]" {
		t.Error("Unexpected result:", res)
		return
	}

	// Changesets are copies

	cs[0].Context = 99

	if s.Changeset(r1)[0].Context != 1 {
		t.Error("Changeset should not be modifiable")
		return
	}

	// History of a single construct

	if res := fmt.Sprint(s.RevisionsOf(3)); res != "[Revision 2 Revision 3]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(s.RevisionsOf(2)); res != "[Revision 1 Revision 2 Revision 3]" {
		t.Error("Unexpected result:", res)
		return
	}

	if s.Snapshot(3) != snap || s.Snapshot(2) != nil {
		t.Error("Unexpected snapshot")
		return
	}

	// Time based lookup

	if s.RevisionAt(s.Timestamp(r2)) != r2 || s.RevisionAt(r2.Timestamp().Add(time.Millisecond)) != r2 {
		t.Error("Unexpected revision for time")
		return
	}

	if s.RevisionAt(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)) != nil {
		t.Error("No revision should exist before the first one")
		return
	}

	// Tags and metadata

	s.SetTag(r1, "v1")
	s.SetMetadata(r1, "user", "alice")
	s.SetMetadata(r1, "comment", "initial import")

	if s.RevisionByTag("v1") != r1 || s.Tag(r1) != "v1" {
		t.Error("Unexpected tagged revision")
		return
	}

	s.SetTag(r2, "v1")

	if s.RevisionByTag("v1") != r2 || s.Tag(r1) != "" {
		t.Error("Tag should have moved")
		return
	}

	s.SetTag(r2, "v2")

	if s.RevisionByTag("v1") != nil || s.RevisionByTag("v2") != r2 {
		t.Error("Tag should have been replaced")
		return
	}

	if v, ok := s.Metadata(r1, "user"); !ok || v != "alice" {
		t.Error("Unexpected metadata:", v, ok)
		return
	}

	if _, ok := s.Metadata(r2, "user"); ok {
		t.Error("Unexpected metadata")
		return
	}

	if res := fmt.Sprint(s.MetadataKeys(r1)); res != "[comment user]" {
		t.Error("Unexpected result:", res)
		return
	}

	s.Clear()

	if s.Len() != 0 || s.Last() != nil || len(s.RevisionsOf(2)) != 0 || s.RevisionByTag("v2") != nil {
		t.Error("Store should be empty")
		return
	}
}
