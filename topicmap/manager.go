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
	"sync"

	"github.com/google/uuid"
	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/pools"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/revision"
	"github.com/krotik/topicdb/topicmap/util"
)

/*
Manager data structure
*/
type Manager struct {
	name     string       // Name of the topic map
	features Features     // Enabled features
	base     data.Locator // Base locator of the topic map
	tmID     data.ID      // ID of the topic map construct

	ids        *identityStore        // Identity store
	chars      *characteristicsStore // Names, occurrences and variants
	typed      *typedStore           // Types of typed constructs
	scopes     *scopeStore           // Scopes of scoped constructs
	topicTypes *topicTypeStore       // Type-instance and supertype-subtype relations
	assocs     *associationStore     // Associations, roles and players
	reif       *reificationStore     // Reification links

	revs          *revision.Store   // Revision log
	listeners     *listenerRegistry // Registered listeners
	merging       map[data.ID]bool  // Topics which are currently merged
	reifierMerges []reifierMerge    // Reifier merges waiting for an ongoing merge
	readOnly      bool              // Flag if this manager is a read-only copy

	pool     *pools.ThreadPool         // Worker pool for background tasks
	workers  int                       // Number of background workers
	state    string                    // Current state of the manager
	queued   []pools.Task              // Tasks queued during a commit
	taskErrs *errorutil.CompositeError // Errors of background tasks

	mutex      *sync.RWMutex // Mutex to protect the topic map
	stateMutex *sync.Mutex   // Mutex to protect the manager state
}

/*
NewManager returns a new, open topic map manager. If no base locator is given a
unique urn:uuid locator is generated.
*/
func NewManager(name string, base data.Locator, features Features) *Manager {
	if base == "" {
		base = data.Locator("urn:uuid:" + uuid.New().String())
	}

	tm := &Manager{
		name:       name,
		features:   features,
		base:       base,
		ids:        newIdentityStore(),
		chars:      newCharacteristicsStore(),
		typed:      newTypedStore(),
		scopes:     newScopeStore(),
		topicTypes: newTopicTypeStore(),
		assocs:     newAssociationStore(),
		reif:       newReificationStore(),
		revs:       revision.NewStore(features.History),
		merging:    make(map[data.ID]bool),
		pool:       pools.NewThreadPool(),
		workers:    DefaultWorkerCount,
		state:      StateClosed,
		taskErrs:   errorutil.NewCompositeError(),
		mutex:      &sync.RWMutex{},
		stateMutex: &sync.Mutex{},
	}

	tm.listeners = &listenerRegistry{tm, make(map[string]Listener),
		make(map[data.EventKind]map[string]Listener), &sync.RWMutex{}}

	tm.tmID = tm.ids.newConstruct(data.KindTopicMap, data.NoID)

	errorutil.AssertOk(tm.Open())

	LogDebug(fmt.Sprintf("Created topic map %v (%v)", name, base))

	return tm
}

/*
Name returns the name of the topic map.
*/
func (tm *Manager) Name() string {
	return tm.name
}

/*
BaseLocator returns the base locator of the topic map.
*/
func (tm *Manager) BaseLocator() data.Locator {
	return tm.base
}

/*
Features returns the enabled features of the topic map.
*/
func (tm *Manager) Features() Features {
	return tm.features
}

/*
TopicMap returns the ID of the topic map construct.
*/
func (tm *Manager) TopicMap() data.ID {
	return tm.tmID
}

/*
Revisions returns the revision log of the topic map.
*/
func (tm *Manager) Revisions() *revision.Store {
	return tm.revs
}

/*
CreateLocator creates a locator by resolving a reference against the base locator.
*/
func (tm *Manager) CreateLocator(reference string) (data.Locator, error) {
	return tm.base.Resolve(reference)
}

/*
CreateTransaction is not supported. Use Submit and Commit to coordinate work.
*/
func (tm *Manager) CreateTransaction() error {
	return &util.TopicMapError{Type: util.ErrNotSupported, Detail: "Transactions are not supported"}
}

/*
String returns a string representation of the topic map.
*/
func (tm *Manager) String() string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	return fmt.Sprintf("TopicMap %v (%v): %v topics, %v associations",
		tm.name, tm.base, tm.ids.count(data.KindTopic), tm.ids.count(data.KindAssociation))
}

// Lifecycle
// =========

/*
State returns the current state of the manager.
*/
func (tm *Manager) State() string {
	tm.stateMutex.Lock()
	defer tm.stateMutex.Unlock()

	return tm.state
}

/*
SetWorkerCount sets the number of background workers. The change takes
effect immediately if the manager is open.
*/
func (tm *Manager) SetWorkerCount(count int) {
	tm.stateMutex.Lock()
	defer tm.stateMutex.Unlock()

	if count < 1 {
		count = 1
	}

	tm.workers = count

	if tm.state == StateOpen {
		tm.pool.SetWorkerCount(count, false)
	}
}

/*
Open opens the manager. Opening an open manager has no effect.
*/
func (tm *Manager) Open() error {
	tm.stateMutex.Lock()
	defer tm.stateMutex.Unlock()

	if tm.state == StateClosed {
		tm.pool.SetWorkerCount(tm.workers, false)
		tm.state = StateOpen
	}

	return nil
}

/*
Close closes the manager. All submitted background tasks are processed before
the worker pool is stopped. All listeners are removed.
*/
func (tm *Manager) Close() error {
	tm.stateMutex.Lock()
	defer tm.stateMutex.Unlock()

	if tm.state == StateDraining {
		return &util.TopicMapError{Type: util.ErrConcurrentAccess, Detail: "Commit in progress"}
	} else if tm.state == StateClosed {
		return nil
	}

	tm.pool.JoinAll()
	tm.state = StateClosed

	tm.listeners.clear()

	return nil
}

/*
backgroundTask wraps a function which is run by the worker pool.
*/
type backgroundTask struct {
	tm  *Manager
	run func() error
}

/*
Run executes the task on the worker with the given thread id.
*/
func (t *backgroundTask) Run(tid uint64) error {
	return t.run()
}

/*
HandleError collects errors of the task. They are returned by the next commit.
*/
func (t *backgroundTask) HandleError(e error) {
	t.tm.stateMutex.Lock()
	defer t.tm.stateMutex.Unlock()

	LogInfo("Background task failed: ", e)

	t.tm.taskErrs.Add(e)
}

/*
Submit submits a task to the background worker pool. Tasks which are
submitted during a commit are queued until the commit has finished.
*/
func (tm *Manager) Submit(task func() error) error {
	tm.stateMutex.Lock()
	defer tm.stateMutex.Unlock()

	t := &backgroundTask{tm, task}

	switch tm.state {
	case StateClosed:
		return &util.TopicMapError{Type: util.ErrClosed}
	case StateDraining:
		tm.queued = append(tm.queued, t)
	default:
		tm.pool.AddTask(t)
	}

	return nil
}

/*
Commit waits until all submitted background tasks have finished. New tasks are
queued while the commit is in progress. Returns all errors of the finished
tasks. A concurrent commit fails with an ErrConcurrentAccess error.
*/
func (tm *Manager) Commit() error {
	tm.stateMutex.Lock()

	if tm.state == StateDraining {
		tm.stateMutex.Unlock()
		return &util.TopicMapError{Type: util.ErrConcurrentAccess, Detail: "Commit already in progress"}
	} else if tm.state == StateClosed {
		tm.stateMutex.Unlock()
		return &util.TopicMapError{Type: util.ErrClosed}
	}

	tm.state = StateDraining
	tm.stateMutex.Unlock()

	tm.pool.WaitAll()

	tm.stateMutex.Lock()
	defer tm.stateMutex.Unlock()

	tm.state = StateOpen

	for _, t := range tm.queued {
		tm.pool.AddTask(t)
	}
	tm.queued = nil

	if tm.taskErrs.HasErrors() {
		err := tm.taskErrs
		tm.taskErrs = errorutil.NewCompositeError()
		return err
	}

	return nil
}

// Operations
// ==========

/*
operation groups all elementary changes of a logical operation. The revision
of the operation is created with the first change.
*/
type operation struct {
	tm  *Manager           // Manager of the operation
	rev *revision.Revision // Revision of the operation
}

/*
notify notifies all listeners about an elementary change and records it in the
revision of the operation.
*/
func (op *operation) notify(kind data.EventKind, ctx data.ID, newValue interface{}, oldValue interface{}) {
	tm := op.tm

	ctxKind := tm.ids.kind(ctx)
	if snap, ok := oldValue.(*data.Snapshot); ok && ctxKind == data.KindUnknown {
		ctxKind = snap.Kind
	}

	tm.listeners.notify(&data.Event{
		Kind:        kind,
		Context:     ctx,
		ContextKind: ctxKind,
		NewValue:    newValue,
		OldValue:    oldValue,
	})

	if op.rev == nil {
		op.rev = tm.revs.CreateRevision()
	}

	tm.revs.StoreChange(op.rev, kind, ctx, newValue, oldValue)
}

/*
writeOp acquires the write lock and starts a new operation. The returned
function releases the lock.
*/
func (tm *Manager) writeOp() (*operation, func(), error) {
	if tm.features.ReadOnly || tm.readOnly {
		return nil, nil, &util.TopicMapError{Type: util.ErrNotSupported, Detail: "Topic map is read-only"}
	} else if tm.State() == StateClosed {
		return nil, nil, &util.TopicMapError{Type: util.ErrClosed}
	}

	tm.mutex.Lock()

	return &operation{tm, nil}, tm.mutex.Unlock, nil
}

/*
readOnlyCopy returns a read-only copy of this manager which shares all stores
but uses its own lock. Listeners receive such a copy so they can run queries
while a change is in progress.
*/
func (tm *Manager) readOnlyCopy() *Manager {
	c := *tm
	c.mutex = &sync.RWMutex{}
	c.readOnly = true
	return &c
}

// Argument checks
// ===============

/*
construct resolves a construct id and checks its kind. Without given kinds any
kind is accepted.
*/
func (tm *Manager) construct(id data.ID, kinds ...data.Kind) (data.ID, error) {
	rid := tm.ids.resolve(id)

	if rid == data.NoID {
		return data.NoID, &util.TopicMapError{Type: util.ErrModelConstraint,
			Detail: fmt.Sprintf("Unknown construct %v", id)}
	}

	if len(kinds) == 0 {
		return rid, nil
	}

	k := tm.ids.kind(rid)
	for _, kind := range kinds {
		if k == kind {
			return rid, nil
		}
	}

	return data.NoID, &util.TopicMapError{Type: util.ErrModelConstraint,
		Detail: fmt.Sprintf("Construct %v is a %v and not a %v", id, k, kinds[0])}
}

/*
topic resolves a topic id.
*/
func (tm *Manager) topic(id data.ID) (data.ID, error) {
	return tm.construct(id, data.KindTopic)
}

/*
topics resolves a list of topic ids.
*/
func (tm *Manager) topicList(ids []data.ID) ([]data.ID, error) {
	res := make([]data.ID, 0, len(ids))

	for _, id := range ids {
		t, err := tm.topic(id)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}

	return res, nil
}
