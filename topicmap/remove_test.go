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
	"strings"
	"testing"

	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

func TestRemoveTopic(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	typ, _ := tm.CreateTopicBySubjectIdentifier("si:type")
	inst, _ := tm.CreateTopicBySubjectIdentifier("si:inst")
	tm.AddType(inst, typ)

	if err := tm.RemoveTopic(typ, false); !util.IsError(err, util.ErrConstructInUse) ||
		err.Error() != fmt.Sprintf("TopicMapError: Construct is still in use (Topic %v is used as topic type)", typ) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tm.RemoveTopic(typ, true); err != nil {
		t.Error(err)
		return
	}

	if tm.Exists(typ) || tm.Exists(inst) || tm.TopicBySubjectIdentifier("si:inst") != data.NoID {
		t.Error("Topics should have been removed")
		return
	}

	// Removed topics leave a snapshot

	if snap := tm.Snapshot(inst); snap == nil || fmt.Sprint(snap.SubjectIdentifiers, snap.Types) !=
		fmt.Sprintf("[si:inst] [%v]", typ) {
		t.Error("Unexpected snapshot:", snap)
		return
	}

	// Cyclic dependencies

	a, _ := tm.CreateTopic()
	b, _ := tm.CreateTopic()
	tm.AddType(a, b)
	tm.AddType(b, a)

	if err := tm.RemoveTopic(a, true); err != nil {
		t.Error(err)
		return
	}

	if tm.Exists(a) || tm.Exists(b) || tm.Count(data.KindTopic) != 0 {
		t.Error("Topics should have been removed")
		return
	}

	if err := tm.RemoveTopic(a, true); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestRemoveTopicUsage(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	owner, _ := tm.CreateTopic()
	theme, _ := tm.CreateTopic()
	email, _ := tm.CreateTopic()

	tm.CreateName(owner, data.NoID, "Owner", []data.ID{theme})
	occ, _ := tm.CreateOccurrence(owner, email, "owner@example.com", "", nil)

	if err := tm.RemoveTopic(theme, false); !util.IsError(err, util.ErrConstructInUse) ||
		!strings.Contains(err.Error(), "used as theme") {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tm.RemoveTopic(email, false); !util.IsError(err, util.ErrConstructInUse) ||
		!strings.Contains(err.Error(), "used as type") {
		t.Error("Unexpected result:", err)
		return
	}

	tm.RemoveTopic(theme, true)
	tm.RemoveTopic(email, true)

	if len(tm.Names(owner)) != 0 || len(tm.Occurrences(owner)) != 0 || !tm.Exists(owner) {
		t.Error("Dependent characteristics should have been removed")
		return
	}

	if snap := tm.Snapshot(occ); snap == nil || snap.Value != "owner@example.com" || snap.Parent != owner {
		t.Error("Unexpected snapshot:", snap)
		return
	}

	// Role players

	other, _ := tm.CreateTopic()
	member, _ := tm.CreateTopic()
	knows, _ := tm.CreateTopic()

	assoc, _ := tm.CreateAssociation(knows, nil)
	tm.CreateRole(assoc, member, owner)
	tm.CreateRole(assoc, member, other)

	if err := tm.RemoveTopic(other, false); !util.IsError(err, util.ErrConstructInUse) ||
		!strings.Contains(err.Error(), "plays a role") {
		t.Error("Unexpected result:", err)
		return
	}

	tm.RemoveTopic(other, true)

	if tm.Exists(assoc) || len(tm.RolesPlayed(owner)) != 0 || !tm.Exists(member) {
		t.Error("Association should have been removed")
		return
	}

	// Reifiers

	reifier, _ := tm.CreateTopic()
	occ2, _ := tm.CreateOccurrence(owner, member, "foo", "", nil)
	tm.SetReifier(occ2, reifier)

	if err := tm.RemoveTopic(reifier, false); !util.IsError(err, util.ErrConstructInUse) ||
		!strings.Contains(err.Error(), "reifies a construct") {
		t.Error("Unexpected result:", err)
		return
	}

	f := DefaultFeatures()
	f.ReificationDeletionConstraint = false
	tm2 := newTestManager(f)
	defer tm2.Close()

	owner2, _ := tm2.CreateTopic()
	reifier2, _ := tm2.CreateTopic()
	name2, _ := tm2.CreateName(owner2, data.NoID, "foo", nil)
	tm2.SetReifier(name2, reifier2)

	if err := tm2.RemoveTopic(reifier2, false); err != nil {
		t.Error(err)
		return
	}

	if tm2.Reifier(name2) != data.NoID {
		t.Error("Reifier should have been unset")
		return
	}
}

func TestRemoveConstruct(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	owner, _ := tm.CreateTopic()
	sort, _ := tm.CreateTopic()
	reifier, _ := tm.CreateTopic()

	name, _ := tm.CreateName(owner, data.NoID, "Owner", nil)
	v, _ := tm.CreateVariant(name, "owner", "", []data.ID{sort})
	tm.AddItemIdentifier(v, "ii:variant")
	tm.SetReifier(name, reifier)

	if err := tm.RemoveConstruct(owner); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tm.RemoveConstruct(name); err != nil {
		t.Error(err)
		return
	}

	if tm.Exists(name) || tm.Exists(v) || tm.Reified(reifier) != data.NoID ||
		tm.ConstructByItemIdentifier("ii:variant") != data.NoID {
		t.Error("Name should have been removed with its variants")
		return
	}

	if snap := tm.Snapshot(v); snap == nil || fmt.Sprint(snap.Kind, snap.Parent, snap.Themes, snap.ItemIdentifiers) !=
		fmt.Sprintf("variant %v [%v] [ii:variant]", name, sort) {
		t.Error("Unexpected snapshot:", snap)
		return
	}

	// Sort topic is no longer used as theme

	if err := tm.RemoveTopic(sort, false); err != nil {
		t.Error(err)
		return
	}

	// Roles are removed individually

	member, _ := tm.CreateTopic()
	assoc, _ := tm.CreateAssociation(member, nil)
	r1, _ := tm.CreateRole(assoc, member, owner)
	r2, _ := tm.CreateRole(assoc, member, reifier)

	if err := tm.RemoveConstruct(r1); err != nil {
		t.Error(err)
		return
	}

	if res := fmt.Sprint(tm.Roles(assoc)); res != fmt.Sprintf("[%v]", r2) {
		t.Error("Unexpected result:", res)
		return
	}

	tm.RemoveConstruct(assoc)

	if tm.Exists(r2) || len(tm.Associations()) != 0 {
		t.Error("Association should have been removed with its roles")
		return
	}

	// Removals are recorded

	revs := tm.Revisions()

	if res := fmt.Sprint(revs.Changeset(revs.Last())); !strings.HasPrefix(res, fmt.Sprintf(
		"[role.removed %v (new: <nil> old: ", assoc)) || !strings.Contains(res, "association.removed 1 ") {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestMergeTopicMaps(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	a, _ := tm.CreateTopicBySubjectIdentifier("si:a")
	tm.CreateName(a, data.NoID, "A", nil)

	other := NewManager("other", "http://example.com/other/", DefaultFeatures())
	defer other.Close()

	a2, _ := other.CreateTopicBySubjectIdentifier("si:a")
	b2, _ := other.CreateTopicBySubjectIdentifier("si:b")
	other.CreateName(a2, data.NoID, "A", nil)
	other.CreateName(b2, data.NoID, "B", nil)
	other.AddItemIdentifier(other.TopicMap(), "ii:other")

	r2, _ := other.CreateTopicBySubjectIdentifier("si:reifier")
	other.SetReifier(other.TopicMap(), r2)

	typeInstance, _ := other.CreateTopicBySubjectIdentifier(data.PSITypeInstance)
	typeRole, _ := other.CreateTopicBySubjectIdentifier(data.PSIType)
	instanceRole, _ := other.CreateTopicBySubjectIdentifier(data.PSIInstance)
	person, _ := other.CreateTopicBySubjectIdentifier("si:person")

	ti, _ := other.CreateAssociation(typeInstance, nil)
	other.CreateRole(ti, typeRole, person)
	other.CreateRole(ti, instanceRole, b2)

	malformed, _ := other.CreateAssociation(typeInstance, nil)
	other.CreateRole(malformed, typeRole, person)

	knows, _ := other.CreateTopicBySubjectIdentifier("si:knows")
	member, _ := other.CreateTopicBySubjectIdentifier("si:member")
	k, _ := other.CreateAssociation(knows, nil)
	other.CreateRole(k, member, a2)
	other.CreateRole(k, member, b2)

	err := tm.MergeTopicMaps(other)

	if !strings.HasPrefix(fmt.Sprint(err), "TopicMapError: Invalid model state (Association") ||
		strings.Contains(fmt.Sprint(err), ";") {
		t.Error("Unexpected result:", err)
		return
	}

	b := tm.TopicBySubjectIdentifier("si:b")
	p := tm.TopicBySubjectIdentifier("si:person")

	if b == data.NoID || p == data.NoID {
		t.Error("Topics should have been imported")
		return
	}

	if res := len(tm.Names(a)); res != 1 {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(tm.Types(b)); res != fmt.Sprintf("[%v]", p) {
		t.Error("Unexpected result:", res)
		return
	}

	if res := tm.Associations(); len(res) != 1 || tm.Type(res[0]) != tm.TopicBySubjectIdentifier("si:knows") {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(tm.AssociationsPlayed(a), tm.AssociationsPlayed(b)); res !=
		fmt.Sprintf("%v %v", tm.Associations(), tm.Associations()) {
		t.Error("Unexpected result:", res)
		return
	}

	if tm.Reifier(tm.TopicMap()) != tm.TopicBySubjectIdentifier("si:reifier") ||
		tm.ConstructByItemIdentifier("ii:other") != tm.TopicMap() {
		t.Error("Topic map construct should have been merged")
		return
	}

	// The imported topic map is unchanged

	if other.Count(data.KindAssociation) != 3 || other.Count(data.KindTopic) != 10 {
		t.Error("Imported topic map should not change")
		return
	}

	// Importing twice does not create duplicates

	tm.MergeTopicMaps(other)

	if len(tm.Names(a)) != 1 || len(tm.Associations()) != 1 {
		t.Error("Unexpected duplicates")
		return
	}

	if err := tm.MergeTopicMaps(tm); err != nil {
		t.Error(err)
		return
	}
}
