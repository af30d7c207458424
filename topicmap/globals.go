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
Package topicmap contains the main API to the topic map engine.

# Manager API

The main API is provided by a Manager object which can be created with the
NewManager() constructor function. A manager holds a single topic map in memory
and provides CRUD functionality for topics, names, occurrences, variants,
associations and roles. All constructs are referenced by an opaque data.ID.

# Stores

The state of a topic map is distributed over several stores. The identity store
is the authority for locator lookups and resolves IDs of merged topics. The
attribute stores keep the characteristics, types, scopes, topic types,
associations and reification links of all constructs. Each store is a set of
maps which is only accessed while holding the manager lock.

# Merging

Adding an identifier which is already used by another topic merges the two
topics (if automatic merging is enabled). A merge moves all characteristics,
identities and relations of the source topic to the target topic, folds
duplicate characteristics and associations and finally removes the source
topic. The ID of the source topic is redirected to the target topic.

# Revisions

Every logical operation creates a revision in the revision log (if history is
enabled). Each elementary change is recorded with the kind of change, the
changed construct and the new and old values.

# Listeners

Listeners are notified about every elementary change. They are used to keep
query caches (see the index package) consistent and to forward events to other
systems. A listener receives a read-only copy of the manager which can be used
for queries while the change is in progress.

# Background tasks

Tasks can be submitted to a worker pool of the manager. A commit waits until all
submitted tasks have finished. Tasks which are submitted while a commit is in
progress are queued until the commit has finished.
*/
package topicmap

import (
	"log"
)

/*
Logger is a function which processes log messages from the topic map engine
*/
type Logger func(v ...interface{})

/*
LogInfo is called if an info message is logged in the topic map engine

By default this is the go log.Print function.
*/
var LogInfo = Logger(log.Print)

/*
LogDebug is called if a debug message is logged in the topic map engine

By default this is the LogNull function.
*/
var LogDebug = Logger(LogNull)

/*
LogNull is a discarding logger to be used for disabling loggers
*/
var LogNull = func(v ...interface{}) {
}

/*
Features are the optional features of a topic map.
*/
type Features struct {
	History                       bool // Record a revision log
	AutomaticMerging              bool // Merge topics if identifiers collide
	ReificationDeletionConstraint bool // Reifiers cannot be removed while they reify
	MergeByTopicName              bool // Merge topics which have an equal name
	ReadOnly                      bool // Reject all modifications
}

/*
DefaultFeatures returns the default features of a topic map.
*/
func DefaultFeatures() Features {
	return Features{
		History:                       true,
		AutomaticMerging:              true,
		ReificationDeletionConstraint: true,
		MergeByTopicName:              false,
		ReadOnly:                      false,
	}
}

/*
Manager states
*/
const (
	StateClosed   = "Closed"
	StateOpen     = "Open"
	StateDraining = "Draining"
)

/*
DefaultWorkerCount is the default number of background workers
*/
const DefaultWorkerCount = 4
