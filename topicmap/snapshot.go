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
	"github.com/krotik/topicdb/topicmap/data"
)

/*
Snapshot returns a frozen copy of the attributes of a construct. For constructs
which have been removed the snapshot which was taken at removal time is
returned (if history is enabled).
*/
func (tm *Manager) Snapshot(c data.ID) *data.Snapshot {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	if rc := tm.ids.resolve(c); rc != data.NoID {
		return tm.snapshot(rc)
	}

	return tm.revs.Snapshot(c)
}

/*
snapshot creates a frozen copy of the attributes of a construct.
*/
func (tm *Manager) snapshot(c data.ID) *data.Snapshot {
	kind := tm.ids.kind(c)

	snap := &data.Snapshot{
		ID:              c,
		Kind:            kind,
		Parent:          tm.ids.parent(c),
		ItemIdentifiers: tm.ids.itemIdentifiersOf(c),
		Reifier:         tm.reif.reifierOf(c),
	}

	switch kind {
	case data.KindTopic:
		snap.SubjectIdentifiers = tm.ids.subjectIdentifiersOf(c)
		snap.SubjectLocators = tm.ids.subjectLocatorsOf(c)
		snap.Types = tm.topicTypes.typesOf(c)
		snap.Supertypes = tm.topicTypes.supertypesOf(c)
		snap.Reified = tm.reif.reifiedBy(c)
		snap.Children = append(tm.chars.namesOf(c), tm.chars.occurrencesOf(c)...)

	case data.KindName:
		snap.Children = tm.chars.variantsOf(c)

	case data.KindAssociation:
		snap.Children = tm.assocs.rolesOf(c)

	case data.KindRole:
		snap.Player = tm.assocs.playerOf(c)
	}

	if kind.IsTyped() {
		snap.Type = tm.typed.typeOf(c)
	}

	if kind.IsScoped() {
		snap.Themes = tm.scopes.scopeOf(c).Themes()
	}

	if kind.HasValue() {
		lit := tm.chars.value(c)
		snap.Value = lit.Value
		snap.Datatype = lit.Datatype
	}

	return snap
}
