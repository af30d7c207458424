/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package data

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/krotik/topicdb/topicmap/util"
)

func TestLocator(t *testing.T) {

	if _, err := NewLocator("foo/bar"); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Relative locator should not be accepted:", err)
		return
	}

	if _, err := NewLocator(""); err == nil {
		t.Error("Empty locator should not be accepted")
		return
	}

	l, err := NewLocator("  http://example.com/base/  ")

	if err != nil || l.String() != "http://example.com/base/" {
		t.Error("Unexpected result:", l, err)
		return
	}

	r, err := l.Resolve("topic/1")

	if err != nil || r != "http://example.com/base/topic/1" {
		t.Error("Unexpected result:", r, err)
		return
	}

	r, err = l.Resolve("#fragment")

	if err != nil || r != "http://example.com/base/#fragment" {
		t.Error("Unexpected result:", r, err)
		return
	}

	if r, err = l.Resolve("si:person/1"); err != nil || r != "si:person/1" {
		t.Error("Unexpected result:", r, err)
		return
	}
}

func TestScope(t *testing.T) {

	s1 := NewScope([]ID{5, 3, 3, NoID, 9})
	s2 := NewScope([]ID{9, 5, 3})
	s3 := NewScope([]ID{5, 3})

	if s1.ID() != s2.ID() || s1.ID() == s3.ID() {
		t.Error("Unexpected scope ids:", s1.ID(), s2.ID(), s3.ID())
		return
	}

	if res := fmt.Sprint(s1.Themes()); res != "[3 5 9]" {
		t.Error("Unexpected result:", res)
		return
	}

	if s1.String() != "Scope[3, 5, 9]" || s1.Len() != 3 {
		t.Error("Unexpected result:", s1)
		return
	}

	ucs := NewScope(nil)

	if !ucs.IsUnconstrained() || ucs.ID() != "" || s1.IsUnconstrained() {
		t.Error("Unexpected unconstrained scope:", ucs)
		return
	}

	if !s1.Contains(5) || s1.Contains(4) || s1.Contains(10) {
		t.Error("Unexpected contains result")
		return
	}

	if !s1.ContainsAll([]ID{3, 9}) || s1.ContainsAll([]ID{3, 4}) {
		t.Error("Unexpected contains all result")
		return
	}

	if !s1.ContainsAny([]ID{4, 9}) || s1.ContainsAny([]ID{4, 10}) {
		t.Error("Unexpected contains any result")
		return
	}

	if res := fmt.Sprint(s3.Union([]ID{1, 5})); res != "[1 3 5]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(s1.Replace(9, 3)); res != "[3 5]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(s1.Without(5)); res != "[3 9]" {
		t.Error("Unexpected result:", res)
		return
	}

	// Large theme ids are packed differently but stay deterministic

	s4 := NewScope([]ID{70000, 3})
	s5 := NewScope([]ID{3, 70000})

	if s4.ID() != s5.ID() || s4.ID() == s1.ID() {
		t.Error("Unexpected scope ids:", s4.ID(), s5.ID())
		return
	}
}

func TestKindsAndEvents(t *testing.T) {

	if KindTopic.String() != "topic" || Kind(99).String() != "kind(99)" {
		t.Error("Unexpected kind names")
		return
	}

	if !KindRole.IsTyped() || KindVariant.IsTyped() || !KindVariant.IsScoped() ||
		KindRole.IsScoped() || !KindOccurrence.HasValue() || KindTopic.HasValue() {
		t.Error("Unexpected kind properties")
		return
	}

	if EventNameAdded.String() != "name.added" || EventKind(0).String() != "event(0)" {
		t.Error("Unexpected event names")
		return
	}

	if len(EventKinds()) != len(eventNames) {
		t.Error("Unexpected number of event kinds:", len(EventKinds()))
		return
	}

	e := &Event{EventTypeSet, 5, KindName, ID(3), NoID}

	if e.String() != "type.set on name 5 (new: 3 old: 0)" {
		t.Error("Unexpected result:", e)
		return
	}

	snap := &Snapshot{ID: 5, Kind: KindName, Parent: 2, Themes: []ID{4, 3}}

	if snap.String() != "Snapshot of name 5 (parent: 2)" || snap.ScopeKey() != NewScope([]ID{3, 4}).ID() {
		t.Error("Unexpected result:", snap)
		return
	}

	if id, err := ParseID("42"); err != nil || id != 42 || id.String() != "42" {
		t.Error("Unexpected result:", id, err)
		return
	}

	if res := fmt.Sprint(SortLocators([]Locator{"si:b", "si:a"})); res != "[si:a si:b]" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestEventData(t *testing.T) {
	snap := &Snapshot{ID: 5, Kind: KindName, Parent: 2, Type: 3, Themes: []ID{7, 8},
		Value: "foo", Datatype: XSDString, ItemIdentifiers: []Locator{"ii:5"}}

	e := &Event{EventNameRemoved, 2, KindTopic, nil, snap}

	res, err := json.Marshal(e.Data())
	if err != nil {
		t.Error(err)
		return
	}

	if string(res) != `{"context":2,"contextKind":"topic","event":"name.removed","new":null,`+
		`"old":{"datatype":"http://www.w3.org/2001/XMLSchema#string","id":5,"itemIdentifiers":["ii:5"],`+
		`"kind":"name","parent":2,"scope":[7,8],"type":3,"value":"foo"}}` {
		t.Error("Unexpected result:", string(res))
		return
	}

	e = &Event{EventValueModified, 5, KindOccurrence, Literal{"1", XSDInteger}, Literal{"a", XSDString}}

	if res := fmt.Sprint(e.Data()["new"]); res != "map[datatype:http://www.w3.org/2001/XMLSchema#integer value:1]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(PlainValue(NewScope([]ID{4, 3})), PlainValue(Locator("si:x")), PlainValue(ID(3)),
		PlainValue((*Scope)(nil)), PlainValue(nil)); res != "[3 4]si:x3 <nil> <nil>" {
		t.Error("Unexpected result:", res)
		return
	}
}
