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

import (
	"fmt"
	"strings"

	"github.com/krotik/common/bitutil"
	"github.com/krotik/common/sortutil"
)

/*
Scope is an immutable set of themes.
*/
type Scope struct {
	id     string // Deterministic id derived from the theme set
	themes []ID   // Sorted themes
}

/*
NewScope creates a new scope object from a list of themes. The themes are
sorted and duplicates are removed. The topic map interns scopes so client
code should use the scope objects of the topic map.
*/
func NewScope(themes []ID) *Scope {
	list := SortedIDs(themes)

	return &Scope{ScopeKey(list), list}
}

/*
ScopeKey returns the deterministic id of a theme set. The empty theme set (the
unconstrained scope) has the empty key.
*/
func ScopeKey(themes []ID) string {
	list := SortedIDs(themes)

	if len(list) == 0 {
		return ""
	}

	ulist := make([]uint64, len(list))
	for i, t := range list {
		ulist[i] = uint64(t)
	}

	return fmt.Sprintf("%x", bitutil.PackList(ulist, ulist[len(ulist)-1]))
}

/*
ID returns the id of this scope.
*/
func (s *Scope) ID() string {
	return s.id
}

/*
Themes returns the themes of this scope.
*/
func (s *Scope) Themes() []ID {
	return append([]ID{}, s.themes...)
}

/*
Len returns the number of themes in this scope.
*/
func (s *Scope) Len() int {
	return len(s.themes)
}

/*
IsUnconstrained returns if this is the unconstrained scope (no themes).
*/
func (s *Scope) IsUnconstrained() bool {
	return len(s.themes) == 0
}

/*
Contains checks if a given theme is part of this scope.
*/
func (s *Scope) Contains(theme ID) bool {
	for _, t := range s.themes {
		if t == theme {
			return true
		} else if t > theme {
			break
		}
	}
	return false
}

/*
ContainsAll checks if all given themes are part of this scope.
*/
func (s *Scope) ContainsAll(themes []ID) bool {
	for _, t := range themes {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

/*
ContainsAny checks if at least one of the given themes is part of this scope.
*/
func (s *Scope) ContainsAny(themes []ID) bool {
	for _, t := range themes {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

/*
Union returns the theme set of this scope joined with a given theme set.
*/
func (s *Scope) Union(themes []ID) []ID {
	return SortedIDs(append(s.Themes(), themes...))
}

/*
Replace returns the theme set of this scope with one theme replaced by another.
*/
func (s *Scope) Replace(oldTheme ID, newTheme ID) []ID {
	res := make([]ID, 0, len(s.themes))

	for _, t := range s.themes {
		if t == oldTheme {
			t = newTheme
		}
		res = append(res, t)
	}

	return SortedIDs(res)
}

/*
Without returns the theme set of this scope without a given theme.
*/
func (s *Scope) Without(theme ID) []ID {
	res := make([]ID, 0, len(s.themes))

	for _, t := range s.themes {
		if t != theme {
			res = append(res, t)
		}
	}

	return res
}

/*
String returns a string representation of this scope.
*/
func (s *Scope) String() string {
	strs := make([]string, len(s.themes))
	for i, t := range s.themes {
		strs[i] = t.String()
	}
	return fmt.Sprintf("Scope[%v]", strings.Join(strs, ", "))
}

/*
SortedIDs returns a sorted copy of a given list of IDs without duplicates
and without NoID entries.
*/
func SortedIDs(ids []ID) []ID {
	ulist := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id != NoID {
			ulist = append(ulist, uint64(id))
		}
	}

	sortutil.UInt64s(ulist)

	res := make([]ID, 0, len(ulist))
	for i, u := range ulist {
		if i == 0 || ulist[i-1] != u {
			res = append(res, ID(u))
		}
	}

	return res
}
