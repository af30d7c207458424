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
	"fmt"
	"testing"

	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

func TestMergeByIdentity(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	t1, _ := tm.CreateTopicBySubjectIdentifier("si:person/1")
	t2, _ := tm.CreateTopicBySubjectIdentifier("si:person/2")

	tm.CreateName(t1, data.NoID, "Alice", nil)
	n2, _ := tm.CreateName(t2, data.NoID, "Alice", nil)

	email, _ := tm.CreateTopicBySubjectIdentifier("si:email")
	tm.CreateOccurrence(t1, email, "alice@example.com", "", nil)
	tm.AddItemIdentifier(t1, "ii:alice")

	// Adding a subject identifier of another topic merges both topics

	if err := tm.AddSubjectIdentifier(t2, "si:person/1"); err != nil {
		t.Error(err)
		return
	}

	if tm.Resolve(t1) != t2 || !tm.Exists(t1) || tm.Kind(t1) != data.KindTopic {
		t.Error("Merged topic should resolve to the target")
		return
	}

	if res := fmt.Sprint(tm.SubjectIdentifiers(t2), tm.ItemIdentifiers(t2), tm.Names(t2)); res !=
		fmt.Sprintf("[si:person/1 si:person/2] [ii:alice] [%v]", n2) {
		t.Error("Unexpected result:", res)
		return
	}

	if res := tm.Occurrences(t2); len(res) != 1 || tm.Value(res[0]) != "alice@example.com" {
		t.Error("Unexpected result:", res)
		return
	}

	// The default name type, the email type and the merged topic remain

	if res := tm.Count(data.KindTopic); res != 3 {
		t.Error("Unexpected result:", res)
		return
	}

	// Queries with the old ID return the merged topic

	if res := fmt.Sprint(tm.Names(t1)); res != fmt.Sprintf("[%v]", n2) {
		t.Error("Unexpected result:", res)
		return
	}

	// Item identifiers and subject identifiers collide as well

	t3, _ := tm.CreateTopicByItemIdentifier("ii:person/3")
	t4, _ := tm.CreateTopic()

	if err := tm.AddSubjectIdentifier(t4, "ii:person/3"); err != nil {
		t.Error(err)
		return
	}

	if tm.Resolve(t3) != t4 || fmt.Sprint(tm.ItemIdentifiers(t4), tm.SubjectIdentifiers(t4)) !=
		"[ii:person/3] [ii:person/3]" {
		t.Error("Unexpected merge result")
		return
	}

	// Chains of redirects are resolved

	t5, _ := tm.CreateTopic()
	tm.MergeTopics(t5, t4)

	if tm.Resolve(t3) != t5 || tm.Resolve(t4) != t5 {
		t.Error("Unexpected redirects:", tm.Resolve(t3), tm.Resolve(t4))
		return
	}

	// Item identifiers of other constructs cannot be taken over by topics

	occ := tm.Occurrences(t2)[0]
	tm.AddItemIdentifier(occ, "ii:occ")

	if err := tm.AddItemIdentifier(t5, "ii:occ"); !util.IsError(err, util.ErrIdentityConflict) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := tm.CreateTopicByItemIdentifier("ii:occ"); !util.IsError(err, util.ErrIdentityConflict) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestMergeWithoutAutomaticMerging(t *testing.T) {
	f := DefaultFeatures()
	f.AutomaticMerging = false

	tm := newTestManager(f)
	defer tm.Close()

	t1, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	t2, _ := tm.CreateTopicBySubjectLocator("http://example.com/a")

	if err := tm.AddSubjectIdentifier(t2, "si:a"); !util.IsError(err, util.ErrIdentityConflict) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tm.AddItemIdentifier(t2, "si:a"); !util.IsError(err, util.ErrIdentityConflict) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tm.AddSubjectLocator(t1, "http://example.com/a"); !util.IsError(err, util.ErrIdentityConflict) {
		t.Error("Unexpected result:", err)
		return
	}

	// Explicit merges are still possible

	if err := tm.MergeTopics(t1, t2); err != nil || tm.Count(data.KindTopic) != 1 {
		t.Error("Unexpected result:", err)
		return
	}

	if res := fmt.Sprint(tm.SubjectLocators(t1)); res != "[http://example.com/a]" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestMergeNamesAndVariants(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	sort, _ := tm.CreateTopicBySubjectIdentifier("si:sort")
	display, _ := tm.CreateTopicBySubjectIdentifier("si:display")

	t1, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	t2, _ := tm.CreateTopicBySubjectIdentifier("si:b")

	n1, _ := tm.CreateName(t1, data.NoID, "X", nil)
	tm.CreateVariant(n1, "x-sort", "", []data.ID{sort})

	n2, _ := tm.CreateName(t2, data.NoID, "X", nil)
	tm.CreateVariant(n2, "x-display", "", []data.ID{display})
	tm.CreateVariant(n2, "x-sort", "", []data.ID{sort})
	tm.AddItemIdentifier(n2, "ii:name2")

	n3, _ := tm.CreateName(t2, data.NoID, "Y", nil)
	tm.AddItemIdentifier(n3, "ii:name3")

	if err := tm.MergeTopics(t1, t2); err != nil {
		t.Error(err)
		return
	}

	names := tm.Names(t1)

	if len(names) != 2 || names[0] != n1 || tm.Value(names[1]) != "Y" {
		t.Error("Unexpected names:", names)
		return
	}

	// Names which are moved keep their identifiers

	if tm.ConstructByItemIdentifier("ii:name3") != names[1] || tm.ConstructByItemIdentifier("ii:name2") != n1 {
		t.Error("Unexpected item identifiers")
		return
	}

	variants := tm.Variants(n1)

	if len(variants) != 2 || tm.Value(variants[0]) != "x-sort" || tm.Value(variants[1]) != "x-display" {
		t.Error("Unexpected variants:", variants)
		return
	}

	if tm.Exists(n2) || tm.Exists(n3) {
		t.Error("Merged names should not exist anymore")
		return
	}

	// Snapshots of the removed names are kept

	if snap := tm.Snapshot(n2); snap == nil || snap.Value != "X" || snap.Kind != data.KindName {
		t.Error("Unexpected snapshot:", snap)
		return
	}
}

func TestMergeReifiers(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	t1, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	t2, _ := tm.CreateTopicBySubjectIdentifier("si:b")

	n1, _ := tm.CreateName(t1, data.NoID, "X", nil)
	n2, _ := tm.CreateName(t2, data.NoID, "X", nil)

	r1, _ := tm.CreateTopicByItemIdentifier("ii:r1")
	r2, _ := tm.CreateTopicByItemIdentifier("ii:r2")

	tm.SetReifier(n1, r1)
	tm.SetReifier(n2, r2)

	if err := tm.MergeTopics(t1, t2); err != nil {
		t.Error(err)
		return
	}

	reifier := tm.Reifier(n1)

	if reifier == data.NoID || reifier == r1 || reifier == r2 {
		t.Error("Both reifiers should have been merged into a new topic:", reifier)
		return
	}

	if tm.Resolve(r1) != reifier || tm.Resolve(r2) != reifier || tm.Reified(reifier) != n1 {
		t.Error("Unexpected reifier")
		return
	}

	if res := fmt.Sprint(tm.ItemIdentifiers(reifier)); res != "[ii:r1 ii:r2]" {
		t.Error("Unexpected result:", res)
		return
	}

	// Topics which reify different constructs cannot be merged

	t3, _ := tm.CreateTopic()
	t4, _ := tm.CreateTopic()
	occType, _ := tm.CreateTopic()
	occ, _ := tm.CreateOccurrence(t1, occType, "foo", "", nil)

	tm.SetReifier(tm.TopicMap(), t3)
	tm.SetReifier(occ, t4)

	if err := tm.MergeTopics(t3, t4); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Unexpected result:", err)
		return
	}

	// The reified construct is taken over by the target

	t5, _ := tm.CreateTopic()

	if err := tm.MergeTopics(t5, t4); err != nil {
		t.Error(err)
		return
	}

	if tm.Reifier(occ) != t5 || tm.Reified(t5) != occ {
		t.Error("Unexpected reifier")
		return
	}
}

func TestMergeReifierInOngoingMerge(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	// The name of a is reified by r1 and the equal name of b by b itself

	a, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	b, _ := tm.CreateTopicBySubjectIdentifier("si:b")

	na, _ := tm.CreateName(a, data.NoID, "X", nil)
	nb, _ := tm.CreateName(b, data.NoID, "X", nil)

	r1, _ := tm.CreateTopicByItemIdentifier("ii:r1")

	tm.SetReifier(na, r1)
	tm.SetReifier(nb, b)

	if err := tm.MergeTopics(a, b); err != nil {
		t.Error(err)
		return
	}

	if tm.Resolve(b) != a || tm.Resolve(r1) != a {
		t.Error("Both reifiers should resolve to the merge target:", tm.Resolve(b), tm.Resolve(r1))
		return
	}

	if len(tm.Names(a)) != 1 || tm.Reifier(na) != a || tm.Reified(a) != na {
		t.Error("Unexpected reification:", tm.Names(a), tm.Reifier(na), tm.Reified(a))
		return
	}

	if res := fmt.Sprint(tm.ItemIdentifiers(a)); res != "[ii:r1]" {
		t.Error("Unexpected result:", res)
		return
	}

	// The other way around: the name of c is reified by c and the
	// equal name of d by r2

	c, _ := tm.CreateTopicBySubjectIdentifier("si:c")
	d, _ := tm.CreateTopicBySubjectIdentifier("si:d")

	nc, _ := tm.CreateName(c, data.NoID, "Y", nil)
	nd, _ := tm.CreateName(d, data.NoID, "Y", nil)

	r2, _ := tm.CreateTopicByItemIdentifier("ii:r2")

	tm.SetReifier(nc, c)
	tm.SetReifier(nd, r2)

	if err := tm.MergeTopics(c, d); err != nil {
		t.Error(err)
		return
	}

	if tm.Resolve(d) != c || tm.Resolve(r2) != c {
		t.Error("Both reifiers should resolve to the merge target:", tm.Resolve(d), tm.Resolve(r2))
		return
	}

	if len(tm.Names(c)) != 1 || tm.Reifier(nc) != c || tm.Reified(c) != nc {
		t.Error("Unexpected reification:", tm.Names(c), tm.Reifier(nc), tm.Reified(c))
		return
	}

	if res := fmt.Sprint(tm.ItemIdentifiers(c)); res != "[ii:r2]" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestMergeAssociations(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	a, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	b, _ := tm.CreateTopicBySubjectIdentifier("si:b")
	c, _ := tm.CreateTopicBySubjectIdentifier("si:c")
	member, _ := tm.CreateTopicBySubjectIdentifier("si:member")
	knows, _ := tm.CreateTopicBySubjectIdentifier("si:knows")

	as1, _ := tm.CreateAssociation(knows, nil)
	tm.CreateRole(as1, member, a)
	tm.CreateRole(as1, member, c)

	as2, _ := tm.CreateAssociation(knows, nil)
	tm.CreateRole(as2, member, b)
	tm.CreateRole(as2, member, c)
	tm.AddItemIdentifier(as2, "ii:as2")

	if err := tm.MergeTopics(a, b); err != nil {
		t.Error(err)
		return
	}

	if res := fmt.Sprint(tm.Associations()); res != fmt.Sprintf("[%v]", as1) {
		t.Error("Unexpected result:", res)
		return
	}

	if tm.Exists(as2) || fmt.Sprint(tm.ItemIdentifiers(as1)) != "[ii:as2]" {
		t.Error("Duplicate association should have been folded")
		return
	}

	if res := len(tm.RolesPlayed(c)); res != 1 {
		t.Error("Unexpected result:", res)
		return
	}

	// Associations which only differ in a merged theme become duplicates

	x, _ := tm.CreateTopicBySubjectIdentifier("si:x")
	y, _ := tm.CreateTopicBySubjectIdentifier("si:y")

	as3, _ := tm.CreateAssociation(knows, []data.ID{x})
	tm.CreateRole(as3, member, c)

	as4, _ := tm.CreateAssociation(knows, []data.ID{y})
	tm.CreateRole(as4, member, c)

	if err := tm.MergeTopics(x, y); err != nil {
		t.Error(err)
		return
	}

	if !tm.Exists(as3) || tm.Exists(as4) {
		t.Error("Duplicate association should have been removed")
		return
	}

	if res := fmt.Sprint(tm.Scope(as3)); res != fmt.Sprintf("Scope[%v]", x) {
		t.Error("Unexpected result:", res)
		return
	}

	// Names which only differ in a merged type become duplicates

	nt1, _ := tm.CreateTopic()
	nt2, _ := tm.CreateTopic()
	tm.CreateName(c, nt1, "C", nil)
	tm.CreateName(c, nt2, "C", nil)

	if err := tm.MergeTopics(nt1, nt2); err != nil {
		t.Error(err)
		return
	}

	if res := tm.Names(c); len(res) != 1 || tm.Type(res[0]) != nt1 {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestMergeByTopicName(t *testing.T) {
	f := DefaultFeatures()
	f.MergeByTopicName = true

	tm := newTestManager(f)
	defer tm.Close()

	t1, _ := tm.CreateTopic()
	tm.CreateName(t1, data.NoID, "Same", nil)

	t2, _ := tm.CreateTopic()
	n2, err := tm.CreateName(t2, data.NoID, "Same", nil)
	if err != nil {
		t.Error(err)
		return
	}

	if tm.Resolve(t1) != t2 || fmt.Sprint(tm.Names(t2)) != fmt.Sprintf("[%v]", n2) {
		t.Error("Topics with equal names should have been merged")
		return
	}

	// Default name type and merged topic

	if res := tm.Count(data.KindTopic); res != 2 {
		t.Error("Unexpected result:", res)
		return
	}

	t3, _ := tm.CreateTopic()
	n3, _ := tm.CreateName(t3, data.NoID, "Other", nil)

	if err := tm.SetValue(n3, "Same"); err != nil || tm.Resolve(t2) != t3 {
		t.Error("Changing a name value should cause a merge:", err)
		return
	}

	// Without automatic merging equal names are conflicts

	f.AutomaticMerging = false

	tm2 := newTestManager(f)
	defer tm2.Close()

	t4, _ := tm2.CreateTopic()
	tm2.CreateName(t4, data.NoID, "Same", nil)

	t5, _ := tm2.CreateTopic()

	if _, err := tm2.CreateName(t5, data.NoID, "Same", nil); !util.IsError(err, util.ErrIdentityConflict) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestRemoveDuplicates(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	a, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	c, _ := tm.CreateTopicBySubjectIdentifier("si:c")
	member, _ := tm.CreateTopicBySubjectIdentifier("si:member")
	knows, _ := tm.CreateTopicBySubjectIdentifier("si:knows")
	email, _ := tm.CreateTopicBySubjectIdentifier("si:email")

	tm.CreateOccurrence(a, email, "a@example.com", "", nil)
	tm.CreateOccurrence(a, email, "a@example.com", "", nil)
	tm.CreateOccurrence(a, email, "a@example.com", data.XSDAnyURI, nil)

	// Roles are compared as sets of role type and player

	as1, _ := tm.CreateAssociation(knows, nil)
	tm.CreateRole(as1, member, a)
	tm.CreateRole(as1, member, a)
	tm.CreateRole(as1, member, c)

	as2, _ := tm.CreateAssociation(knows, nil)
	tm.CreateRole(as2, member, c)
	tm.CreateRole(as2, member, a)

	count, err := tm.RemoveDuplicates()
	if err != nil {
		t.Error(err)
		return
	}

	// One occurrence, one association and one role

	if count != 3 {
		t.Error("Unexpected result:", count)
		return
	}

	if res := len(tm.Occurrences(a)); res != 2 {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(tm.Associations(), len(tm.Roles(as1))); res != fmt.Sprintf("[%v] 2", as1) {
		t.Error("Unexpected result:", res)
		return
	}

	if count, _ := tm.RemoveDuplicates(); count != 0 {
		t.Error("Unexpected result:", count)
		return
	}

	tm.CreateOccurrence(c, email, "c@example.com", "", nil)
	tm.CreateOccurrence(c, email, "c@example.com", "", nil)

	if count, _ := tm.RemoveTopicDuplicates(c); count != 1 {
		t.Error("Unexpected result:", count)
		return
	}
}
