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
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/krotik/common/pools"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

func TestMain(m *testing.M) {

	// Keep debug output in the test log

	LogDebug = LogNull

	res := m.Run()

	os.Exit(res)
}

/*
newTestManager creates a topic map for testing.
*/
func newTestManager(features Features) *Manager {
	return NewManager("test", "http://example.com/tm/", features)
}

/*
recordingListener records all events it receives.
*/
type recordingListener struct {
	name   string
	events []string
	kinds  []data.Kind
	lock   sync.Mutex
}

func (l *recordingListener) Name() string {
	return l.name
}

func (l *recordingListener) Handles() []data.EventKind {
	return data.EventKinds()
}

func (l *recordingListener) Handle(tm *Manager, event *data.Event) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.events = append(l.events, event.Kind.String())

	// Queries on the given manager do not block

	l.kinds = append(l.kinds, tm.Kind(event.Context))

	if event.Kind == data.EventTypeAdded {
		return errors.New("Listener error")
	}

	return nil
}

func TestManagerBasics(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	if tm.Name() != "test" || tm.BaseLocator() != "http://example.com/tm/" ||
		tm.TopicMap() != 1 || !tm.Features().History {
		t.Error("Unexpected manager attributes")
		return
	}

	if tm2 := NewManager("foo", "", DefaultFeatures()); !strings.HasPrefix(tm2.BaseLocator().String(), "urn:uuid:") {
		t.Error("Unexpected base locator:", tm2.BaseLocator())
		return
	}

	if err := tm.CreateTransaction(); !util.IsError(err, util.ErrNotSupported) {
		t.Error("Transactions should not be supported:", err)
		return
	}

	if loc, err := tm.CreateLocator("topic/1"); err != nil || loc != "http://example.com/tm/topic/1" {
		t.Error("Unexpected result:", loc, err)
		return
	}

	t1, err := tm.CreateTopicBySubjectIdentifier("si:person/1")
	if err != nil {
		t.Error(err)
		return
	}

	if t1b, _ := tm.CreateTopicBySubjectIdentifier("si:person/1"); t1b != t1 {
		t.Error("Existing topic should be returned")
		return
	}

	t2, _ := tm.CreateTopicByItemIdentifier("ii:person/2")

	if t2b, _ := tm.CreateTopicBySubjectIdentifier("ii:person/2"); t2b != t2 {
		t.Error("Topic with item identifier should be returned")
		return
	}

	if res := fmt.Sprint(tm.SubjectIdentifiers(t2)); res != "[ii:person/2]" {
		t.Error("Unexpected result:", res)
		return
	}

	t3, _ := tm.CreateTopicBySubjectLocator("http://example.com/doc.pdf")

	if t3b, _ := tm.CreateTopicBySubjectLocator("http://example.com/doc.pdf"); t3b != t3 ||
		tm.TopicBySubjectLocator("http://example.com/doc.pdf") != t3 {
		t.Error("Existing topic should be returned")
		return
	}

	if tm.Kind(t1) != data.KindTopic || tm.Parent(t1) != tm.TopicMap() || tm.Kind(99) != data.KindUnknown {
		t.Error("Unexpected kinds")
		return
	}

	if res := fmt.Sprint(tm.Topics()); res != "[2 3 4]" || tm.Count(data.KindTopic) != 3 {
		t.Error("Unexpected result:", res)
		return
	}

	if tm.String() != "TopicMap test (http://example.com/tm/): 3 topics, 0 associations" {
		t.Error("Unexpected result:", tm.String())
		return
	}

	// Types and supertypes

	person, _ := tm.CreateTopicBySubjectIdentifier("si:person")
	agent, _ := tm.CreateTopicBySubjectIdentifier("si:agent")

	if err := tm.AddType(t1, person); err != nil {
		t.Error(err)
		return
	}

	tm.AddType(t2, person)
	tm.AddSupertype(person, agent)

	if err := tm.AddSupertype(person, person); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Unexpected result:", err)
		return
	}

	if res := fmt.Sprint(tm.Instances(person), tm.Types(t1), tm.TopicTypes(),
		tm.Supertypes(person), tm.Subtypes(agent)); res != "[2 3] [5] [5] [6] [5]" {
		t.Error("Unexpected result:", res)
		return
	}

	tm.RemoveType(t2, person)
	tm.RemoveSupertype(person, agent)

	if res := fmt.Sprint(tm.Instances(person), tm.Supertypes(person)); res != "[2] []" {
		t.Error("Unexpected result:", res)
		return
	}

	// Identifiers

	if err := tm.AddItemIdentifier(t1, "ii:person/1"); err != nil {
		t.Error(err)
		return
	}

	tm.AddSubjectLocator(t1, "http://example.com/alice.html")

	if tm.ConstructByItemIdentifier("ii:person/1") != t1 || tm.TopicBySubjectIdentifier("si:person/1") != t1 {
		t.Error("Unexpected lookup results")
		return
	}

	if res := fmt.Sprint(tm.AllItemIdentifiers(), tm.AllSubjectLocators()); res !=
		"[ii:person/1 ii:person/2] [http://example.com/alice.html http://example.com/doc.pdf]" {
		t.Error("Unexpected result:", res)
		return
	}

	tm.RemoveItemIdentifier(t1, "ii:person/1")
	tm.RemoveSubjectLocator(t1, "http://example.com/alice.html")
	tm.RemoveSubjectIdentifier(t2, "ii:person/2")

	if res := fmt.Sprint(tm.ItemIdentifiers(t1), tm.SubjectLocators(t1), tm.SubjectIdentifiers(t2),
		len(tm.AllSubjectIdentifiers())); res != "[] [] [] 3" {
		t.Error("Unexpected result:", res)
		return
	}

	// Argument checks

	if err := tm.AddType(t1, 99); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Unexpected result:", err)
		return
	}

	if _, err := tm.CreateName(tm.TopicMap(), data.NoID, "foo", nil); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Unexpected result:", err)
		return
	}
}

func TestCharacteristicsAndAssociations(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	alice, _ := tm.CreateTopicBySubjectIdentifier("si:alice")
	email, _ := tm.CreateTopicBySubjectIdentifier("si:email")
	german, _ := tm.CreateTopicBySubjectIdentifier("si:lang/de")
	sort, _ := tm.CreateTopicBySubjectIdentifier("si:sort")

	name, err := tm.CreateName(alice, data.NoID, "Alice", nil)
	if err != nil {
		t.Error(err)
		return
	}

	nameType := tm.TopicBySubjectIdentifier(data.PSIDefaultNameType)

	if nameType == data.NoID || tm.Type(name) != nameType || tm.Value(name) != "Alice" ||
		tm.Datatype(name) != data.XSDString || !tm.Scope(name).IsUnconstrained() {
		t.Error("Unexpected name")
		return
	}

	if _, err := tm.CreateVariant(name, "alice", "", nil); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Variant without themes should not be accepted:", err)
		return
	}

	v, err := tm.CreateVariant(name, "alice", "", []data.ID{sort})
	if err != nil {
		t.Error(err)
		return
	}

	if err := tm.AddTheme(name, german); err != nil {
		t.Error(err)
		return
	}

	if res := fmt.Sprint(tm.Variants(name), tm.EffectiveScope(v), tm.Scope(name)); res !=
		fmt.Sprintf("[%v] [%v %v] Scope[%v]", v, german, sort, german) {
		t.Error("Unexpected result:", res)
		return
	}

	if err := tm.RemoveTheme(v, sort); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Variant scope should not become empty:", err)
		return
	}

	occ, err := tm.CreateOccurrence(alice, email, "alice@example.com", data.XSDAnyURI, []data.ID{german})
	if err != nil {
		t.Error(err)
		return
	}

	if tm.Literal(occ) != (data.Literal{Value: "alice@example.com", Datatype: data.XSDAnyURI}) {
		t.Error("Unexpected literal:", tm.Literal(occ))
		return
	}

	if s, _ := tm.CreateScope([]data.ID{german}); s != tm.Scope(occ) || s != tm.Scope(name) {
		t.Error("Scopes should be interned")
		return
	}

	tm.SetValue(occ, "alice@example.org")

	if tm.Value(occ) != "alice@example.org" || tm.Datatype(occ) != data.XSDString {
		t.Error("Unexpected value")
		return
	}

	if err := tm.SetDatatypedValue(name, "1", data.XSDInteger); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Names should only accept strings:", err)
		return
	}

	if res := fmt.Sprint(tm.Names(alice), tm.Occurrences(alice), tm.TypedConstructs(email, data.KindOccurrence),
		tm.ConstructTypes(data.KindOccurrence)); res != fmt.Sprintf("[%v] [%v] [%v] [%v]", name, occ, occ, email) {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(tm.ScopedConstructs(tm.Scope(name), data.KindName), tm.ScopesWithTheme(german),
		tm.Scopes(data.KindVariant)); res != fmt.Sprintf("[%v] [Scope[%v]] [Scope[%v]]", name, german, sort) {
		t.Error("Unexpected result:", res)
		return
	}

	// Associations

	bob, _ := tm.CreateTopicBySubjectIdentifier("si:bob")
	knows, _ := tm.CreateTopicBySubjectIdentifier("si:knows")
	member, _ := tm.CreateTopicBySubjectIdentifier("si:member")

	assoc, _ := tm.CreateAssociation(knows, nil)
	r1, _ := tm.CreateRole(assoc, member, alice)
	r2, err := tm.CreateRole(assoc, member, alice)
	if err != nil {
		t.Error(err)
		return
	}

	if err := tm.SetPlayer(r2, bob); err != nil {
		t.Error(err)
		return
	}

	if res := fmt.Sprint(tm.Roles(assoc), tm.RolesByType(assoc, member), tm.Player(r2),
		tm.RolesPlayed(alice), tm.AssociationsPlayed(bob), tm.Associations()); res !=
		fmt.Sprintf("[%v %v] [%v %v] %v [%v] [%v] [%v]", r1, r2, r1, r2, bob, r1, assoc, assoc) {
		t.Error("Unexpected result:", res)
		return
	}

	if _, err := tm.CreateRole(name, member, bob); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Roles can only be created in associations:", err)
		return
	}

	// Reification

	reifier, _ := tm.CreateTopic()

	if err := tm.SetReifier(assoc, reifier); err != nil {
		t.Error(err)
		return
	}

	if err := tm.SetReifier(name, reifier); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("A topic can only reify one construct:", err)
		return
	}

	if err := tm.SetReifier(alice, reifier); !util.IsError(err, util.ErrModelConstraint) {
		t.Error("Topics cannot be reified:", err)
		return
	}

	if tm.Reifier(assoc) != reifier || tm.Reified(reifier) != assoc ||
		fmt.Sprint(tm.ReifiedConstructs()) != fmt.Sprintf("[%v]", assoc) {
		t.Error("Unexpected reification")
		return
	}

	tm.SetReifier(tm.TopicMap(), data.NoID)
	tm.SetReifier(assoc, data.NoID)

	if tm.Reifier(assoc) != data.NoID || tm.Reified(reifier) != data.NoID {
		t.Error("Reification should have been removed")
		return
	}

	// Types of typed constructs

	spouse, _ := tm.CreateTopicBySubjectIdentifier("si:spouse")

	tm.SetType(assoc, spouse)

	if tm.Type(assoc) != spouse || len(tm.TypedConstructs(knows, data.KindAssociation)) != 0 {
		t.Error("Unexpected type")
		return
	}
}

func TestRevisionsAndListeners(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	l := &recordingListener{name: "recorder"}
	tm.AddListener(l)

	if res := fmt.Sprint(tm.Listeners()); res != "[recorder]" {
		t.Error("Unexpected result:", res)
		return
	}

	a, _ := tm.CreateTopicBySubjectIdentifier("si:a")

	revs := tm.Revisions()

	if revs.Len() != 1 {
		t.Error("Unexpected number of revisions:", revs.Len())
		return
	}

	if res := fmt.Sprint(revs.Changeset(revs.Last())); res !=
		"[topic.added 1 (new: 2 old: <nil>) subjectidentifier.added 2 (new: si:a old: <nil>)]" {
		t.Error("Unexpected result:", res)
		return
	}

	// Operations which change nothing create no revision

	tm.CreateTopicBySubjectIdentifier("si:a")
	tm.RemoveItemIdentifier(a, "ii:unknown")

	if revs.Len() != 1 {
		t.Error("Unexpected number of revisions:", revs.Len())
		return
	}

	b, _ := tm.CreateTopic()
	tm.AddType(b, a)

	l.lock.Lock()
	res := fmt.Sprint(l.events, l.kinds)
	l.lock.Unlock()

	if res != "[topic.added subjectidentifier.added topic.added type.added] [topicmap topic topicmap topic]" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := fmt.Sprint(revs.RevisionsOf(a)); res != "[Revision 1 Revision 3]" {
		t.Error("Unexpected result:", res)
		return
	}

	tm.RemoveListener("recorder")
	tm.CreateTopic()

	if len(l.events) != 4 || len(tm.Listeners()) != 0 {
		t.Error("Listener should have been removed")
		return
	}

	// No history

	f := DefaultFeatures()
	f.History = false
	tm2 := newTestManager(f)
	defer tm2.Close()

	tm2.CreateTopicBySubjectIdentifier("si:a")

	if tm2.Revisions().Len() != 0 || tm2.Revisions().Enabled() {
		t.Error("No revisions should be recorded")
		return
	}
}

func TestReadOnlyAndClosed(t *testing.T) {
	f := DefaultFeatures()
	f.ReadOnly = true

	tm := newTestManager(f)
	defer tm.Close()

	if _, err := tm.CreateTopic(); !util.IsError(err, util.ErrNotSupported) {
		t.Error("Read-only topic map should not accept changes:", err)
		return
	}

	tm2 := newTestManager(DefaultFeatures())

	if tm2.State() != StateOpen {
		t.Error("Unexpected state:", tm2.State())
		return
	}

	tm2.Close()
	tm2.Close()

	if _, err := tm2.CreateTopic(); !util.IsError(err, util.ErrClosed) {
		t.Error("Closed topic map should not accept changes:", err)
		return
	}

	if err := tm2.Submit(func() error { return nil }); !util.IsError(err, util.ErrClosed) {
		t.Error("Closed topic map should not accept tasks:", err)
		return
	}

	if err := tm2.Commit(); !util.IsError(err, util.ErrClosed) {
		t.Error("Closed topic map should not commit:", err)
		return
	}

	tm2.Open()
	defer tm2.Close()

	if _, err := tm2.CreateTopic(); err != nil || tm2.State() != StateOpen {
		t.Error("Reopened topic map should accept changes:", err)
		return
	}
}

func TestSubmitAndCommit(t *testing.T) {
	tm := newTestManager(DefaultFeatures())
	defer tm.Close()

	tm.SetWorkerCount(2)

	for i := 0; i < 10; i++ {
		si := data.Locator(fmt.Sprint("si:topic/", i))

		tm.Submit(func() error {
			_, err := tm.CreateTopicBySubjectIdentifier(si)
			return err
		})
	}

	tm.Submit(func() error {
		return errors.New("Task failed")
	})

	if err := tm.Commit(); err == nil || err.Error() != "Task failed" {
		t.Error("Unexpected result:", err)
		return
	}

	if tm.Count(data.KindTopic) != 10 {
		t.Error("Unexpected number of topics:", tm.Count(data.KindTopic))
		return
	}

	// Errors are only reported once

	if err := tm.Commit(); err != nil {
		t.Error("Unexpected result:", err)
		return
	}

	// Concurrent commits

	block := make(chan bool)
	started := make(chan bool)

	tm.Submit(func() error {
		started <- true
		<-block
		return nil
	})

	<-started

	done := make(chan error)

	go func() {
		done <- tm.Commit()
	}()

	for tm.State() != StateDraining {
		time.Sleep(time.Millisecond)
	}

	if err := tm.Commit(); !util.IsError(err, util.ErrConcurrentAccess) {
		t.Error("Unexpected result:", err)
		return
	}

	if err := tm.Close(); !util.IsError(err, util.ErrConcurrentAccess) {
		t.Error("Unexpected result:", err)
		return
	}

	// Tasks which are submitted during a commit are queued

	ran := make(chan bool, 1)

	tm.Submit(func() error {
		ran <- true
		return nil
	})

	close(block)

	if err := <-done; err != nil {
		t.Error(err)
		return
	}

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Error("Queued task did not run")
		return
	}

	if tm.State() != StateOpen {
		t.Error("Unexpected state:", tm.State())
		return
	}
}

func TestBackgroundTask(t *testing.T) {
	var task pools.Task = &backgroundTask{nil, func() error {
		return errors.New("testerror")
	}}

	if err := task.Run(1); err == nil || err.Error() != "testerror" {
		t.Error("Unexpected result:", err)
		return
	}
}
