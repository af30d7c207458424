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
Export returns a construct and all its characteristics as a nested map of
plain values. Topics contain their names and occurrences, names contain their
variants and associations contain their roles. The result can be encoded as
JSON.
*/
func (tm *Manager) Export(c data.ID) (map[string]interface{}, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	c, err := tm.construct(c)
	if err != nil {
		return nil, err
	}

	return tm.export(c), nil
}

/*
export exports a single construct.
*/
func (tm *Manager) export(c data.ID) map[string]interface{} {
	kind := tm.ids.kind(c)

	res := map[string]interface{}{
		"id":              uint64(c),
		"kind":            kind.String(),
		"itemIdentifiers": exportLocators(tm.ids.itemIdentifiersOf(c)),
	}

	if kind == data.KindTopic {
		res["subjectIdentifiers"] = exportLocators(tm.ids.subjectIdentifiersOf(c))
		res["subjectLocators"] = exportLocators(tm.ids.subjectLocatorsOf(c))
		res["types"] = exportIDs(tm.topicTypes.typesOf(c))
		res["supertypes"] = exportIDs(tm.topicTypes.supertypesOf(c))
		res["names"] = tm.exportAll(tm.chars.namesOf(c))
		res["occurrences"] = tm.exportAll(tm.chars.occurrencesOf(c))

		if reified := tm.reif.reifiedBy(c); reified != data.NoID {
			res["reified"] = uint64(reified)
		}

		return res
	}

	if kind == data.KindTopicMap {
		res["topics"] = tm.ids.count(data.KindTopic)
		res["associations"] = tm.ids.count(data.KindAssociation)
	}

	if reifier := tm.reif.reifierOf(c); reifier != data.NoID {
		res["reifier"] = uint64(reifier)
	}

	if kind.IsTyped() {
		res["type"] = uint64(tm.typed.typeOf(c))
	}

	if kind.IsScoped() {
		res["scope"] = exportIDs(tm.scopes.scopeOf(c).Themes())
	}

	if kind.HasValue() {
		lit := tm.chars.value(c)
		res["value"] = lit.Value
		res["datatype"] = lit.Datatype.String()
	}

	switch kind {
	case data.KindName:
		res["variants"] = tm.exportAll(tm.chars.variantsOf(c))
	case data.KindAssociation:
		res["roles"] = tm.exportAll(tm.assocs.rolesOf(c))
	case data.KindRole:
		res["player"] = uint64(tm.assocs.playerOf(c))
	}

	return res
}

func (tm *Manager) exportAll(ids []data.ID) []interface{} {
	res := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		res = append(res, tm.export(id))
	}
	return res
}

func exportIDs(ids []data.ID) []interface{} {
	res := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		res = append(res, uint64(id))
	}
	return res
}

func exportLocators(locs []data.Locator) []interface{} {
	res := make([]interface{}, 0, len(locs))
	for _, l := range locs {
		res = append(res, l.String())
	}
	return res
}
