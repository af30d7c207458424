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
Package data contains classes and functions to handle topic map data.

# ID

All constructs of a topic map (the topic map itself, topics, names, occurrences,
variants, associations and roles) are referenced by an opaque ID. IDs are
never reused. If a topic is merged into another topic its ID is redirected to
the surviving topic so existing handles stay valid.

# Locator

A locator is an absolute IRI which identifies a construct (item identifier)
or the subject of a topic (subject identifier and subject locator).

# Scope

A scope is an immutable set of theme topics. Scopes are interned by the topic
map so equal theme sets are represented by the same object.

# Snapshot

A snapshot is a frozen copy of the attributes of a construct. Snapshots are
taken just before a construct is removed so history queries can still
describe it.
*/
package data

import (
	"fmt"
	"strconv"
)

/*
ID is the handle of a topic map construct.
*/
type ID uint64

/*
NoID is the absent construct handle.
*/
const NoID ID = 0

/*
String returns a string representation of this ID.
*/
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

/*
ParseID parses a string representation of an ID.
*/
func ParseID(s string) (ID, error) {
	i, err := strconv.ParseUint(s, 10, 64)
	return ID(i), err
}

/*
Kind is the kind of a topic map construct.
*/
type Kind int

/*
Known construct kinds
*/
const (
	KindUnknown Kind = iota
	KindTopicMap
	KindTopic
	KindName
	KindOccurrence
	KindVariant
	KindAssociation
	KindRole
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindTopicMap:    "topicmap",
	KindTopic:       "topic",
	KindName:        "name",
	KindOccurrence:  "occurrence",
	KindVariant:     "variant",
	KindAssociation: "association",
	KindRole:        "role",
}

/*
String returns the name of this kind.
*/
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

/*
IsTyped returns if constructs of this kind have a type.
*/
func (k Kind) IsTyped() bool {
	return k == KindName || k == KindOccurrence || k == KindAssociation || k == KindRole
}

/*
IsScoped returns if constructs of this kind have a scope.
*/
func (k Kind) IsScoped() bool {
	return k == KindName || k == KindOccurrence || k == KindVariant || k == KindAssociation
}

/*
HasValue returns if constructs of this kind carry a literal value.
*/
func (k Kind) HasValue() bool {
	return k == KindName || k == KindOccurrence || k == KindVariant
}

/*
Literal is a value with its datatype. Names always have the datatype xsd:string.
*/
type Literal struct {
	Value    string
	Datatype Locator
}
