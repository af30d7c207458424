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
Package util contains utility classes for the topic map engine.

# TopicMapError

Models a topic map related error. Every error which is returned to a client of
the topic map manager is a TopicMapError. The Type field can be used for equality
checks against the error types of this package (errors.Is works as well).
*/
package util

import (
	"errors"
	"fmt"
)

/*
TopicMapError is a topic map related error
*/
type TopicMapError struct {
	Type   error  // Error type (to be used for equal checks)
	Detail string // Details of this error
}

/*
Error returns a human-readable string representation of this error.
*/
func (te *TopicMapError) Error() string {
	if te.Detail != "" {
		return fmt.Sprintf("TopicMapError: %v (%v)", te.Type, te.Detail)
	}

	return fmt.Sprintf("TopicMapError: %v", te.Type)
}

/*
Unwrap returns the error type of this error.
*/
func (te *TopicMapError) Unwrap() error {
	return te.Type
}

/*
Topic map related error types
*/
var (
	ErrIdentityConflict  = errors.New("Identity conflict")
	ErrNotSupported      = errors.New("Operation not supported")
	ErrInvalidModelState = errors.New("Invalid model state")
	ErrConstructInUse    = errors.New("Construct is still in use")
	ErrConcurrentAccess  = errors.New("Concurrent access")
	ErrModelConstraint   = errors.New("Model constraint violated")
	ErrClosed            = errors.New("Topic map is closed")
)

/*
NewError creates a new TopicMapError. The detail string is formatted with the
given arguments.
*/
func NewError(errType error, detail string, args ...interface{}) *TopicMapError {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &TopicMapError{errType, detail}
}

/*
IsError checks if a given error is a TopicMapError of a given type.
*/
func IsError(err error, errType error) bool {
	var te *TopicMapError

	if errors.As(err, &te) {
		return te.Type == errType
	}

	return false
}
