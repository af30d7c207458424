/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1

import (
	"testing"

	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

func TestIndexQuery(t *testing.T) {
	queryURL := "http://localhost" + TESTPORT + EndpointIndexQuery

	tm := resetTopicMap(topicmap.DefaultFeatures())

	person, _ := tm.CreateTopicBySubjectIdentifier("http://example.com/person")
	alice, _ := tm.CreateTopicBySubjectIdentifier("http://example.com/alice")
	bob, _ := tm.CreateTopicBySubjectIdentifier("http://example.com/bob")

	tm.AddType(alice, person)
	tm.AddType(bob, person)

	tm.CreateName(alice, data.NoID, "Alice", nil)
	tm.CreateName(bob, data.NoID, "Bob", []data.ID{alice})

	for query, expected := range map[string]string{
		"instances/2":                       "[\n  3,\n  4\n]",
		"types/3":                           "[\n  2\n]",
		"topictypes":                        "[\n  2\n]",
		"topicsbytypes?type=2":              "[\n  3,\n  4\n]",
		"topicsbytypes?type=2&type=3&all=1": "[]",
		"names?value=Alice":                 "[\n  6\n]",
		"names?value=Carol":                 "[]",
		"scoped/name?theme=3":               "[\n  7\n]",
		"themes/name":                       "[\n  3\n]",
		"typed/name/5":                      "[\n  6,\n  7\n]",
		"constructtypes/name":               "[\n  5\n]",
		"identifiers?pattern=alice&type=si": "[\n  3\n]",
		"identifiers?pattern=example.com/b": "[\n  4\n]",
		"supertypes/3":                      "[]",
		"instances/2?sort=id":               "[\n  4,\n  3\n]",
		"instances/2?sort=name":             "[\n  3,\n  4\n]",
		"instances/2?offset=1&limit=1":      "[\n  4\n]",
	} {
		st, _, res := sendTestRequest(queryURL+query, "GET", nil)
		if st != "200 OK" || res != expected {
			t.Error("Unexpected response:", query, st, res)
			return
		}
	}

	_, header, _ := sendTestRequest(queryURL+"instances/2?limit=1", "GET", nil)
	if res := header.Get(HTTPHeaderTotalCount); res != "2" {
		t.Error("Unexpected result:", res)
		return
	}

	_, _, res := sendTestRequest(queryURL+"names?value=Bob&export=true", "GET", nil)
	if name := decodeResult(res).([]interface{})[0].(map[string]interface{}); name["value"] != "Bob" || name["id"] != float64(7) {
		t.Error("Unexpected response:", res)
		return
	}

	_, _, res = sendTestRequest(queryURL+"stats", "GET", nil)
	if stats := decodeResult(res).(map[string]interface{}); len(stats) != 6 {
		t.Error("Unexpected response:", res)
		return
	}

	// Results are invalidated by changes

	tm.RemoveType(bob, person)

	if _, _, res = sendTestRequest(queryURL+"instances/2", "GET", nil); res != "[\n  3\n]" {
		t.Error("Unexpected response:", res)
		return
	}

	// Errors

	for query, expected := range map[string]string{
		"foo":                            "Unknown index query: foo",
		"instances":                      "Query instances needs a construct id",
		"instances/x":                    "Invalid construct id: x",
		"typed/foo/1":                    "Unknown construct kind: foo",
		"typed/name":                     "Query typed needs a construct id",
		"names":                          "Query string for value is required",
		"identifiers?type=xx":            "Identifier type must be ii, si or sl",
		"identifiers?pattern=(":          "TopicMapError: Model constraint violated (Invalid pattern (: error parsing regexp: missing closing ): `(`)",
		"instances/2?sort=foo":           "Unknown sort order: foo",
		"occurrences?value=1&datatype=x": "TopicMapError: Model constraint violated (Locator must be absolute: x)",
	} {
		st, _, res := sendTestRequest(queryURL+query, "GET", nil)
		if st != "400 Bad Request" || res != expected {
			t.Error("Unexpected response:", query, st, res)
			return
		}
	}

	st, _, res := sendTestRequest(queryURL, "GET", nil)
	if st != "400 Bad Request" || res != "Need an index query" {
		t.Error("Unexpected response:", st, res)
		return
	}

	oldIX := api.IX
	api.IX = nil
	defer func() {
		api.IX = oldIX
	}()

	st, _, res = sendTestRequest(queryURL+"topictypes", "GET", nil)
	if st != "503 Service Unavailable" || res != "No indexes available" {
		t.Error("Unexpected response:", st, res)
		return
	}
}
