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
	"sort"
	"sync"

	"github.com/krotik/topicdb/topicmap/data"
)

/*
Listener models a receiver of topic map change events.
*/
type Listener interface {

	/*
	   Name returns the name of the listener.
	*/
	Name() string

	/*
	   Handles returns a list of events which are handled by this listener.
	*/
	Handles() []data.EventKind

	/*
	   Handle handles an event. The given manager is a read-only copy of the
	   topic map which can be used for queries. Errors are logged but do not
	   undo the change.
	*/
	Handle(tm *Manager, event *data.Event) error
}

/*
listenerRegistry data structure
*/
type listenerRegistry struct {
	tm        *Manager                               // Manager which provides events
	listeners map[string]Listener                    // Map of listeners
	eventMap  map[data.EventKind]map[string]Listener // Map of events to listeners
	mutex     *sync.RWMutex                          // Mutex to protect the registry
}

/*
notify sends an event to all listeners which handle it.
*/
func (lr *listenerRegistry) notify(event *data.Event) {
	lr.mutex.RLock()

	listeners, ok := lr.eventMap[event.Kind]
	if !ok || len(listeners) == 0 {
		lr.mutex.RUnlock()
		return
	}

	names := make([]string, 0, len(listeners))
	for name := range listeners {
		names = append(names, name)
	}
	sort.Strings(names)

	handlers := make([]Listener, len(names))
	for i, name := range names {
		handlers[i] = listeners[name]
	}

	lr.mutex.RUnlock()

	tmcopy := lr.tm.readOnlyCopy()

	for _, l := range handlers {
		if err := l.Handle(tmcopy, event); err != nil {
			LogInfo(fmt.Sprintf("Listener %v failed to handle %v: %v", l.Name(), event, err))
		}
	}
}

/*
clear removes all listeners.
*/
func (lr *listenerRegistry) clear() {
	lr.mutex.Lock()
	defer lr.mutex.Unlock()

	lr.listeners = make(map[string]Listener)
	lr.eventMap = make(map[data.EventKind]map[string]Listener)
}

/*
AddListener adds a listener. A listener with the same name is replaced.
*/
func (tm *Manager) AddListener(l Listener) {
	lr := tm.listeners

	tm.RemoveListener(l.Name())

	lr.mutex.Lock()
	defer lr.mutex.Unlock()

	lr.listeners[l.Name()] = l

	for _, handledEvent := range l.Handles() {

		listeners, ok := lr.eventMap[handledEvent]
		if !ok {
			listeners = make(map[string]Listener)
			lr.eventMap[handledEvent] = listeners
		}

		listeners[l.Name()] = l
	}
}

/*
RemoveListener removes a listener.
*/
func (tm *Manager) RemoveListener(name string) {
	lr := tm.listeners

	lr.mutex.Lock()
	defer lr.mutex.Unlock()

	if _, ok := lr.listeners[name]; !ok {
		return
	}

	delete(lr.listeners, name)

	for _, listeners := range lr.eventMap {
		delete(listeners, name)
	}
}

/*
Listeners returns a list of all registered listeners.
*/
func (tm *Manager) Listeners() []string {
	lr := tm.listeners

	lr.mutex.RLock()
	defer lr.mutex.RUnlock()

	ret := make([]string, 0, len(lr.listeners))

	for name := range lr.listeners {
		ret = append(ret, name)
	}

	sort.StringSlice(ret).Sort()

	return ret
}
