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

import "fmt"

/*
EventKind is the kind of an elementary change in a topic map.
*/
type EventKind int

/*
Elementary change events. Each event has a context construct, a new value and
an old value. The removal events carry a Snapshot of the removed construct as
old value.
*/
const (
	EventTopicAdded EventKind = iota + 1
	EventTopicRemoved
	EventTypeAdded
	EventTypeRemoved
	EventSupertypeAdded
	EventSupertypeRemoved
	EventItemIdentifierAdded
	EventItemIdentifierRemoved
	EventSubjectIdentifierAdded
	EventSubjectIdentifierRemoved
	EventSubjectLocatorAdded
	EventSubjectLocatorRemoved
	EventNameAdded
	EventNameRemoved
	EventOccurrenceAdded
	EventOccurrenceRemoved
	EventVariantAdded
	EventVariantRemoved
	EventAssociationAdded
	EventAssociationRemoved
	EventRoleAdded
	EventRoleRemoved
	EventPlayerModified
	EventTypeSet
	EventValueModified
	EventScopeModified
	EventReifierSet
	EventTopicsMerged
	EventDuplicateRemoved
)

var eventNames = map[EventKind]string{
	EventTopicAdded:               "topic.added",
	EventTopicRemoved:             "topic.removed",
	EventTypeAdded:                "type.added",
	EventTypeRemoved:              "type.removed",
	EventSupertypeAdded:           "supertype.added",
	EventSupertypeRemoved:         "supertype.removed",
	EventItemIdentifierAdded:      "itemidentifier.added",
	EventItemIdentifierRemoved:    "itemidentifier.removed",
	EventSubjectIdentifierAdded:   "subjectidentifier.added",
	EventSubjectIdentifierRemoved: "subjectidentifier.removed",
	EventSubjectLocatorAdded:      "subjectlocator.added",
	EventSubjectLocatorRemoved:    "subjectlocator.removed",
	EventNameAdded:                "name.added",
	EventNameRemoved:              "name.removed",
	EventOccurrenceAdded:          "occurrence.added",
	EventOccurrenceRemoved:        "occurrence.removed",
	EventVariantAdded:             "variant.added",
	EventVariantRemoved:           "variant.removed",
	EventAssociationAdded:         "association.added",
	EventAssociationRemoved:       "association.removed",
	EventRoleAdded:                "role.added",
	EventRoleRemoved:              "role.removed",
	EventPlayerModified:           "player.modified",
	EventTypeSet:                  "type.set",
	EventValueModified:            "value.modified",
	EventScopeModified:            "scope.modified",
	EventReifierSet:               "reifier.set",
	EventTopicsMerged:             "topics.merged",
	EventDuplicateRemoved:         "duplicate.removed",
}

/*
String returns the name of this event kind.
*/
func (e EventKind) String() string {
	if n, ok := eventNames[e]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(e))
}

/*
EventKinds returns all known event kinds.
*/
func EventKinds() []EventKind {
	res := make([]EventKind, 0, len(eventNames))
	for k := EventTopicAdded; k <= EventDuplicateRemoved; k++ {
		res = append(res, k)
	}
	return res
}

/*
Event is an elementary change in a topic map.
*/
type Event struct {
	Kind        EventKind   // Kind of the change
	Context     ID          // Construct which was changed
	ContextKind Kind        // Kind of the context construct
	NewValue    interface{} // New value (ID, Locator, Literal, *Scope or nil)
	OldValue    interface{} // Old value (ID, Locator, Literal, *Scope, *Snapshot or nil)
}

/*
String returns a string representation of this event.
*/
func (e *Event) String() string {
	return fmt.Sprintf("%v on %v %v (new: %v old: %v)", e.Kind,
		e.ContextKind, e.Context, e.NewValue, e.OldValue)
}

/*
Data returns the event as a map of plain values which can be encoded as JSON.
*/
func (e *Event) Data() map[string]interface{} {
	return map[string]interface{}{
		"event":       e.Kind.String(),
		"context":     uint64(e.Context),
		"contextKind": e.ContextKind.String(),
		"new":         PlainValue(e.NewValue),
		"old":         PlainValue(e.OldValue),
	}
}

/*
PlainValue converts an event value into a plain value which can be encoded
as JSON.
*/
func PlainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case ID:
		return uint64(val)
	case Locator:
		return val.String()
	case Literal:
		return map[string]interface{}{
			"value":    val.Value,
			"datatype": val.Datatype.String(),
		}
	case *Scope:
		if val == nil {
			return nil
		}
		return plainIDs(val.Themes())
	case *Snapshot:
		if val == nil {
			return nil
		}
		return val.Data()
	}

	return v
}

func plainIDs(ids []ID) []interface{} {
	res := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		res = append(res, uint64(id))
	}
	return res
}

func plainLocators(locs []Locator) []interface{} {
	res := make([]interface{}, 0, len(locs))
	for _, l := range locs {
		res = append(res, l.String())
	}
	return res
}
