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
	"sort"
)

/*
Snapshot is a frozen copy of the attributes of a construct.
*/
type Snapshot struct {
	ID     ID   // Id of the construct
	Kind   Kind // Kind of the construct
	Parent ID   // Parent construct

	ItemIdentifiers    []Locator // Item identifiers of the construct
	SubjectIdentifiers []Locator // Subject identifiers (topics only)
	SubjectLocators    []Locator // Subject locators (topics only)

	Types      []ID // Types (topics only)
	Supertypes []ID // Supertypes (topics only)

	Type     ID      // Type of a typed construct
	Themes   []ID    // Scope themes of a scoped construct
	Value    string  // Value of a name, occurrence or variant
	Datatype Locator // Datatype of an occurrence or variant
	Player   ID      // Player of a role

	Reifier ID // Reifier of the construct
	Reified ID // Construct reified by a topic

	Children []ID // Owned constructs (names, occurrences, variants or roles)
}

/*
ScopeKey returns the scope key of the snapshot's themes.
*/
func (s *Snapshot) ScopeKey() string {
	return ScopeKey(s.Themes)
}

/*
String returns a string representation of this snapshot.
*/
func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot of %v %v (parent: %v)", s.Kind, s.ID, s.Parent)
}

/*
SortLocators sorts a list of locators.
*/
func SortLocators(locs []Locator) []Locator {
	sort.Slice(locs, func(i, j int) bool {
		return locs[i] < locs[j]
	})
	return locs
}

/*
Data returns the snapshot as a map of plain values. Only attributes which are
set are included.
*/
func (s *Snapshot) Data() map[string]interface{} {
	res := map[string]interface{}{
		"id":   uint64(s.ID),
		"kind": s.Kind.String(),
	}

	for k, v := range map[string]ID{"parent": s.Parent, "type": s.Type, "player": s.Player,
		"reifier": s.Reifier, "reified": s.Reified} {
		if v != NoID {
			res[k] = uint64(v)
		}
	}

	for k, v := range map[string][]Locator{"itemIdentifiers": s.ItemIdentifiers,
		"subjectIdentifiers": s.SubjectIdentifiers, "subjectLocators": s.SubjectLocators} {
		if len(v) > 0 {
			res[k] = plainLocators(v)
		}
	}

	for k, v := range map[string][]ID{"types": s.Types, "supertypes": s.Supertypes,
		"scope": s.Themes, "children": s.Children} {
		if len(v) > 0 {
			res[k] = plainIDs(v)
		}
	}

	if s.Kind.HasValue() {
		res["value"] = s.Value
		res["datatype"] = s.Datatype.String()
	}

	return res
}
