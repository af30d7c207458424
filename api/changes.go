/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package api

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/krotik/common/flowutil"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
ChangeFeedBufferSize is the number of events which are buffered per subscription.
*/
var ChangeFeedBufferSize = 100

/*
ChangeFeed is a topic map listener which forwards change events to subscribers.
*/
type ChangeFeed struct {
	pump          *flowutil.EventPump      // Event pump which distributes events
	subscriptions map[string]*Subscription // Active subscriptions
	mutex         *sync.RWMutex            // Mutex to protect the subscriptions
}

/*
Subscription is a single subscriber of a change feed.
*/
type Subscription struct {
	ID      string                      // Unique id of the subscription
	Events  chan map[string]interface{} // Channel of received events
	kinds   map[data.EventKind]bool     // Filter for event kinds (nil for all events)
	dropped uint64                      // Number of dropped events
	mutex   *sync.Mutex                 // Mutex to protect the dropped counter
}

/*
Dropped returns the number of events which were dropped because the subscriber
was too slow.
*/
func (s *Subscription) Dropped() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.dropped
}

/*
NewChangeFeed creates a new change feed.
*/
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{flowutil.NewEventPump(), make(map[string]*Subscription), &sync.RWMutex{}}
}

/*
Name returns the name of the change feed listener.
*/
func (cf *ChangeFeed) Name() string {
	return "api.changefeed"
}

/*
Handles returns all event kinds.
*/
func (cf *ChangeFeed) Handles() []data.EventKind {
	return data.EventKinds()
}

/*
Handle posts an event to all subscribers.
*/
func (cf *ChangeFeed) Handle(tm *topicmap.Manager, event *data.Event) error {
	cf.mutex.RLock()
	defer cf.mutex.RUnlock()

	for id := range cf.subscriptions {
		cf.pump.PostEvent(id, event)
	}

	return nil
}

/*
Subscribe creates a new subscription. Only events of the given kinds are
delivered. All events are delivered if no kinds are given.
*/
func (cf *ChangeFeed) Subscribe(kinds ...data.EventKind) *Subscription {
	cf.mutex.Lock()
	defer cf.mutex.Unlock()

	sub := &Subscription{
		ID:     uuid.New().String(),
		Events: make(chan map[string]interface{}, ChangeFeedBufferSize),
		mutex:  &sync.Mutex{},
	}

	if len(kinds) > 0 {
		sub.kinds = make(map[data.EventKind]bool)
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	cf.pump.AddObserver(sub.ID, nil, func(event string, source interface{}) {
		e := source.(*data.Event)

		if sub.kinds != nil && !sub.kinds[e.Kind] {
			return
		}

		select {
		case sub.Events <- e.Data():
		default:
			sub.mutex.Lock()
			sub.dropped++
			sub.mutex.Unlock()
		}
	})

	cf.subscriptions[sub.ID] = sub

	return sub
}

/*
Unsubscribe removes a subscription. The event channel of the subscription is closed.
*/
func (cf *ChangeFeed) Unsubscribe(sub *Subscription) error {
	cf.mutex.Lock()
	defer cf.mutex.Unlock()

	if _, ok := cf.subscriptions[sub.ID]; !ok {
		return fmt.Errorf("Unknown subscription: %v", sub.ID)
	}

	cf.pump.RemoveObservers(sub.ID, nil)
	delete(cf.subscriptions, sub.ID)
	close(sub.Events)

	return nil
}

/*
Subscriptions returns the number of active subscriptions.
*/
func (cf *ChangeFeed) Subscriptions() int {
	cf.mutex.RLock()
	defer cf.mutex.RUnlock()
	return len(cf.subscriptions)
}
