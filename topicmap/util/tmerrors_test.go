/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestTopicMapError(t *testing.T) {

	err := &TopicMapError{ErrConstructInUse, "Topic 5 is used as a type"}

	if err.Error() != "TopicMapError: Construct is still in use (Topic 5 is used as a type)" {
		t.Error("Unexpected result:", err.Error())
		return
	}

	err = &TopicMapError{ErrClosed, ""}

	if err.Error() != "TopicMapError: Topic map is closed" {
		t.Error("Unexpected result:", err.Error())
		return
	}

	err = NewError(ErrIdentityConflict, "Locator %v is used by %v", "si:foo", 3)

	if err.Error() != "TopicMapError: Identity conflict (Locator si:foo is used by 3)" {
		t.Error("Unexpected result:", err.Error())
		return
	}

	wrapped := fmt.Errorf("outer: %w", err)

	if !errors.Is(wrapped, ErrIdentityConflict) || !IsError(wrapped, ErrIdentityConflict) {
		t.Error("Error type should be detectable")
		return
	}

	if IsError(wrapped, ErrClosed) || IsError(errors.New("foo"), ErrClosed) {
		t.Error("Unexpected error type match")
		return
	}
}
