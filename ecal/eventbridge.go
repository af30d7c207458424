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
Package ecal connects TopicDB to the event condition action language (ECAL).

Changes of a topic map are forwarded as ECAL events. Event names have the form
"TopicDB: tm.<construct>.<action>" and the event kind is the list of the name
parts e.g. [tm topic added]. The event state contains:

	context     : ID of the changed construct
	contextKind : Kind of the changed construct
	new         : New value of the change
	old         : Old value of the change
*/
package ecal

import (
	"fmt"
	"strings"

	"github.com/krotik/ecal/engine"
	"github.com/krotik/ecal/util"
	"github.com/krotik/topicdb/ecal/tmfunc"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
EventPrefix is the prefix of all ECAL event kinds which are produced by TopicDB.
*/
const EventPrefix = "tm"

/*
EventName returns the ECAL event kind of a topic map event.
*/
func EventName(kind data.EventKind) string {
	return fmt.Sprintf("%v.%v", EventPrefix, kind)
}

/*
EventBridge is a listener for a topic map which forwards all change events to ECAL.
Events are only forwarded if they would trigger a rule.
*/
type EventBridge struct {
	Processor engine.Processor
	Logger    util.Logger
}

/*
Name returns the name of the listener.
*/
func (eb *EventBridge) Name() string {
	return "ecal.eventbridge"
}

/*
Handles returns a list of events which are handled by this listener.
*/
func (eb *EventBridge) Handles() []data.EventKind {
	return data.EventKinds()
}

/*
Handle handles an event.
*/
func (eb *EventBridge) Handle(tm *topicmap.Manager, event *data.Event) error {
	var err error

	name := EventName(event.Kind)
	eventName := fmt.Sprintf("TopicDB: %v", name)
	eventKind := strings.Split(name, ".")

	// Construct an event which can be used to check if any rule will trigger.
	// This is to avoid the state construction below for events which would
	// not trigger any rules.

	if !eb.Processor.IsTriggering(engine.NewEvent(eventName, eventKind, nil)) {
		return nil
	}

	state := make(map[interface{}]interface{})
	for k, v := range event.Data() {
		if k != "event" {
			state[k] = tmfunc.ECALValue(v)
		}
	}

	// Events are processed asynchronously. Sinks run once the change is complete
	// so they can query and modify the topic map.

	_, err = eb.Processor.AddEvent(engine.NewEvent(eventName, eventKind, state), nil)

	if err != nil {
		eb.Logger.LogDebug(fmt.Sprintf("TopicDB event %v could not be added to ECAL: %v", name, err))
	}

	return err
}
