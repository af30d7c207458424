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
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/krotik/common/stringutil"
	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
EndpointTopic is the topic endpoint URL (rooted). Handles everything under topic/...
*/
const EndpointTopic = api.APIRoot + APIv1 + "/topic/"

/*
TopicEndpointInst creates a new endpoint handler.
*/
func TopicEndpointInst() api.RestEndpointHandler {
	return &topicEndpoint{}
}

/*
Handler object for topic operations.
*/
type topicEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles a topic query REST call.

GET /topic?offset=<offset>&limit=<limit>
GET /topic?si=<subject identifier>
GET /topic?sl=<subject locator>
GET /topic?ii=<item identifier>
GET /topic/<id>
*/
func (te *topicEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 0, 1, "") {
		return
	}

	if len(resources) == 1 {
		id, ok := parseID(w, resources[0])
		if ok {
			te.writeTopic(w, id)
		}
		return
	}

	// Lookup by identifier

	for _, l := range []struct {
		param  string
		lookup func(data.Locator) data.ID
	}{
		{"si", api.TM.TopicBySubjectIdentifier},
		{"sl", api.TM.TopicBySubjectLocator},
		{"ii", api.TM.ConstructByItemIdentifier},
	} {
		if ref := r.URL.Query().Get(l.param); ref != "" {
			loc, err := api.TM.CreateLocator(ref)
			if err != nil {
				writeError(w, err)
				return
			}

			if t := l.lookup(loc); t != data.NoID && api.TM.Kind(t) == data.KindTopic {
				te.writeTopic(w, t)
			} else {
				http.Error(w, "Unknown topic: "+loc.String(), http.StatusNotFound)
			}
			return
		}
	}

	// List all topics

	offset, ok := queryParamPosNum(w, r, "offset")
	if !ok {
		return
	}

	limit, ok := queryParamPosNum(w, r, "limit")
	if !ok {
		return
	}

	topics := data.SortedIDs(api.TM.Topics())

	w.Header().Add(HTTPHeaderTotalCount, strconv.Itoa(len(topics)))

	if offset > 0 {
		if offset > len(topics) {
			offset = len(topics)
		}
		topics = topics[offset:]
	}

	if limit >= 0 && limit < len(topics) {
		topics = topics[:limit]
	}

	res := make([]interface{}, 0, len(topics))
	for _, t := range topics {
		if exp, err := api.TM.Export(t); err == nil {
			res = append(res, exp)
		}
	}

	writeJSON(w, res)
}

/*
HandlePOST handles REST calls to create or merge topics.

POST /topic
POST /topic/<target>/merge/<source>

The body of a create request is a topic object. The new topic is identified by
the first given subject identifier, subject locator or item identifier. A
topic without identifiers gets a generated item identifier.
*/
func (te *topicEndpoint) HandlePOST(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) {
		return
	}

	if len(resources) > 0 {
		if len(resources) != 3 || resources[1] != "merge" {
			http.Error(w, "Merge requests need a target and a source topic: topic/<target>/merge/<source>",
				http.StatusBadRequest)
			return
		}

		target, ok := parseID(w, resources[0])
		if !ok {
			return
		}

		source, ok := parseID(w, resources[2])
		if !ok {
			return
		}

		if err := api.TM.MergeTopics(target, source); err != nil {
			writeError(w, err)
			return
		}

		writeRevision(w)
		te.writeTopic(w, target)
		return
	}

	obj, ok := readJSONBody(w, r)
	if !ok {
		return
	}

	td, err := parseTopicData(obj)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var t data.ID

	if len(td.subjectIdentifiers) > 0 {
		t, err = api.TM.CreateTopicBySubjectIdentifier(td.subjectIdentifiers[0])
	} else if len(td.subjectLocators) > 0 {
		t, err = api.TM.CreateTopicBySubjectLocator(td.subjectLocators[0])
	} else {
		if len(td.itemIdentifiers) == 0 {
			td.itemIdentifiers = []data.Locator{data.Locator("urn:uuid:" + uuid.New().String())}
		}
		t, err = api.TM.CreateTopicByItemIdentifier(td.itemIdentifiers[0])
	}

	if err == nil {
		t, err = td.apply(api.TM.Resolve(t))
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)
	te.writeTopic(w, t)
}

/*
HandlePUT handles REST calls to add identifiers, types and characteristics to
a topic.

PUT /topic/<id>
*/
func (te *topicEndpoint) HandlePUT(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 1, 1, "Need a topic id") {
		return
	}

	t, ok := parseID(w, resources[0])
	if !ok || !te.checkTopic(w, t) {
		return
	}

	obj, ok := readJSONBody(w, r)
	if !ok {
		return
	}

	td, err := parseTopicData(obj)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if t, err = td.apply(t); err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)
	te.writeTopic(w, t)
}

/*
HandleDELETE handles REST calls to remove topics or their characteristics.

DELETE /topic/<id>?cascade=<bool>
DELETE /topic/<id>/<characteristic id>
*/
func (te *topicEndpoint) HandleDELETE(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 1, 2, "Need a topic id") {
		return
	}

	t, ok := parseID(w, resources[0])
	if !ok || !te.checkTopic(w, t) {
		return
	}

	var err error

	if len(resources) == 2 {
		var c data.ID

		if c, ok = parseID(w, resources[1]); !ok {
			return
		}

		if api.TM.Parent(c) != api.TM.Resolve(t) {
			http.Error(w, fmt.Sprintf("Construct %v is not a characteristic of topic %v", c, t),
				http.StatusBadRequest)
			return
		}

		err = api.TM.RemoveConstruct(c)

	} else {
		err = api.TM.RemoveTopic(t, stringutil.IsTrueValue(r.URL.Query().Get("cascade")))
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)
}

/*
checkTopic checks that a given id is a topic.
*/
func (te *topicEndpoint) checkTopic(w http.ResponseWriter, t data.ID) bool {
	if !api.TM.Exists(t) || api.TM.Kind(t) != data.KindTopic {
		http.Error(w, fmt.Sprint("Unknown topic: ", t), http.StatusNotFound)
		return false
	}
	return true
}

/*
writeTopic writes a topic as JSON.
*/
func (te *topicEndpoint) writeTopic(w http.ResponseWriter, t data.ID) {
	if !te.checkTopic(w, t) {
		return
	}

	exp, err := api.TM.Export(t)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, exp)
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (te *topicEndpoint) SwaggerDefs(s map[string]interface{}) {

	topicBody := map[string]interface{}{
		"name":        "topic",
		"in":          "body",
		"description": "Topic object with identifiers, types, supertypes, names and occurrences.",
		"required":    true,
		"schema": map[string]interface{}{
			"$ref": "#/definitions/Topic",
		},
	}

	s["paths"].(map[string]interface{})["/v1/topic"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return topics.",
			"description": "Lists all topics or looks up a single topic by subject identifier (si), subject locator (sl) or item identifier (ii).",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "offset",
					"in":          "query",
					"description": "Offset in the topic list.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "limit",
					"in":          "query",
					"description": "Maximum number of returned topics.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "si",
					"in":          "query",
					"description": "Subject identifier of a topic.",
					"required":    false,
					"type":        "string",
				},
				{
					"name":        "sl",
					"in":          "query",
					"description": "Subject locator of a topic.",
					"required":    false,
					"type":        "string",
				},
				{
					"name":        "ii",
					"in":          "query",
					"description": "Item identifier of a topic.",
					"required":    false,
					"type":        "string",
				},
			},
			"responses": swaggerResponses("A list of topics or a single topic."),
		},
		"post": map[string]interface{}{
			"summary":     "Create a topic.",
			"description": "Creates a topic or returns the existing topic with the given identity. All other data of the request is added to the topic.",
			"consumes": []string{
				"application/json",
			},
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{topicBody},
			"responses":  swaggerResponses("The created topic."),
		},
	}

	s["paths"].(map[string]interface{})["/v1/topic/{id}"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return a topic.",
			"description": "Returns a topic with all its identifiers and characteristics.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the topic."),
			},
			"responses": swaggerResponses("A topic."),
		},
		"put": map[string]interface{}{
			"summary":     "Modify a topic.",
			"description": "Adds identifiers, types, supertypes, names and occurrences to a topic.",
			"consumes": []string{
				"application/json",
			},
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the topic."),
				topicBody,
			},
			"responses": swaggerResponses("The modified topic."),
		},
		"delete": map[string]interface{}{
			"summary":     "Remove a topic.",
			"description": "Removes a topic. A topic which is still in use can only be removed by cascading.",
			"produces": []string{
				"text/plain",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the topic."),
				{
					"name":        "cascade",
					"in":          "query",
					"description": "Remove all constructs which use the topic.",
					"required":    false,
					"type":        "boolean",
				},
			},
			"responses": swaggerResponses("The topic was removed."),
		},
	}

	s["paths"].(map[string]interface{})["/v1/topic/{target}/merge/{source}"] = map[string]interface{}{
		"post": map[string]interface{}{
			"summary":     "Merge two topics.",
			"description": "Merges the source topic into the target topic.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("target", "Id of the target topic."),
				swaggerIDParam("source", "Id of the source topic."),
			},
			"responses": swaggerResponses("The merged topic."),
		},
	}

	s["definitions"].(map[string]interface{})["Topic"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"subjectIdentifiers": map[string]interface{}{
				"description": "Subject identifiers of the topic.",
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
			},
			"subjectLocators": map[string]interface{}{
				"description": "Subject locators of the topic.",
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
			},
			"itemIdentifiers": map[string]interface{}{
				"description": "Item identifiers of the topic.",
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
			},
			"types": map[string]interface{}{
				"description": "Ids of the types of the topic.",
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer"},
			},
			"supertypes": map[string]interface{}{
				"description": "Ids of the supertypes of the topic.",
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer"},
			},
			"names": map[string]interface{}{
				"description": "Names of the topic (value, type and scope).",
				"type":        "array",
				"items":       map[string]interface{}{"type": "object"},
			},
			"occurrences": map[string]interface{}{
				"description": "Occurrences of the topic (value, datatype, type and scope).",
				"type":        "array",
				"items":       map[string]interface{}{"type": "object"},
			},
		},
	}

	addErrorDefinition(s)
}

// Topic data
// ==========

/*
characteristicData is a name or occurrence of a topic request.
*/
type characteristicData struct {
	typ      data.ID
	value    string
	datatype data.Locator
	themes   []data.ID
}

/*
topicData is the parsed body of a topic request.
*/
type topicData struct {
	itemIdentifiers    []data.Locator
	subjectIdentifiers []data.Locator
	subjectLocators    []data.Locator
	types              []data.ID
	supertypes         []data.ID
	names              []*characteristicData
	occurrences        []*characteristicData
}

/*
parseTopicData parses the body of a topic request.
*/
func parseTopicData(obj map[string]interface{}) (*topicData, error) {
	var err error

	td := &topicData{}

	for _, key := range sortedKeys(obj) {
		val := obj[key]

		switch key {
		case "itemIdentifiers":
			td.itemIdentifiers, err = locatorList(key, val)
		case "subjectIdentifiers":
			td.subjectIdentifiers, err = locatorList(key, val)
		case "subjectLocators":
			td.subjectLocators, err = locatorList(key, val)
		case "types":
			td.types, err = topicIDList(key, val)
		case "supertypes":
			td.supertypes, err = topicIDList(key, val)
		case "names":
			td.names, err = characteristicList(key, val, false)
		case "occurrences":
			td.occurrences, err = characteristicList(key, val, true)
		case "id", "kind":
		default:
			err = fmt.Errorf("Unknown topic attribute: %v", key)
		}

		if err != nil {
			return nil, err
		}
	}

	return td, nil
}

/*
apply adds all data to a given topic. Adding identifiers may merge the topic
with other topics. Returns the id of the resulting topic.
*/
func (td *topicData) apply(t data.ID) (data.ID, error) {
	var err error

	tm := api.TM

	for _, loc := range td.subjectIdentifiers {
		if err = tm.AddSubjectIdentifier(tm.Resolve(t), loc); err != nil {
			return t, err
		}
	}

	for _, loc := range td.subjectLocators {
		if err = tm.AddSubjectLocator(tm.Resolve(t), loc); err != nil {
			return t, err
		}
	}

	for _, loc := range td.itemIdentifiers {
		if err = tm.AddItemIdentifier(tm.Resolve(t), loc); err != nil {
			return t, err
		}
	}

	t = tm.Resolve(t)

	for _, typ := range td.types {
		if err = tm.AddType(t, typ); err != nil {
			return t, err
		}
	}

	for _, st := range td.supertypes {
		if err = tm.AddSupertype(t, st); err != nil {
			return t, err
		}
	}

	for _, n := range td.names {
		if _, err = tm.CreateName(tm.Resolve(t), n.typ, n.value, n.themes); err != nil {
			return t, err
		}
	}

	for _, o := range td.occurrences {
		if _, err = tm.CreateOccurrence(tm.Resolve(t), o.typ, o.value, o.datatype, o.themes); err != nil {
			return t, err
		}
	}

	return tm.Resolve(t), nil
}

/*
locatorList parses a list of locators.
*/
func locatorList(key string, val interface{}) ([]data.Locator, error) {
	refs, ok := stringList(val)
	if !ok {
		return nil, fmt.Errorf("Attribute %v must be a list of strings", key)
	}

	res := make([]data.Locator, 0, len(refs))

	for _, ref := range refs {
		loc, err := api.TM.CreateLocator(ref)
		if err != nil {
			return nil, err
		}
		res = append(res, loc)
	}

	return res, nil
}

/*
topicIDList parses a list of topic ids.
*/
func topicIDList(key string, val interface{}) ([]data.ID, error) {
	ids, ok := idList(val)
	if !ok {
		return nil, fmt.Errorf("Attribute %v must be a list of construct ids", key)
	}
	return ids, nil
}

/*
characteristicList parses a list of names or occurrences.
*/
func characteristicList(key string, val interface{}, isOccurrence bool) ([]*characteristicData, error) {
	list, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("Attribute %v must be a list of objects", key)
	}

	res := make([]*characteristicData, 0, len(list))

	for _, i := range list {
		var err error

		obj, ok := i.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("Attribute %v must be a list of objects", key)
		}

		cd := &characteristicData{}

		if cd.value, ok = obj["value"].(string); !ok {
			return nil, fmt.Errorf("Entries of %v need a value", key)
		}

		if t, ok := obj["type"]; ok {
			ids, ok := idList(t)
			if !ok || len(ids) != 1 {
				return nil, fmt.Errorf("Type of an entry of %v must be a construct id", key)
			}
			cd.typ = ids[0]
		} else if isOccurrence {
			return nil, fmt.Errorf("Entries of %v need a type", key)
		}

		if cd.themes, err = topicIDList("scope", obj["scope"]); err != nil {
			return nil, err
		}

		if dt, ok := obj["datatype"]; ok {
			if !isOccurrence {
				return nil, fmt.Errorf("Entries of %v cannot have a datatype", key)
			}

			locs, err := locatorList("datatype", dt)
			if err != nil {
				return nil, err
			} else if len(locs) != 1 {
				return nil, fmt.Errorf("Datatype of an entry of %v must be a single locator", key)
			}

			cd.datatype = locs[0]
		}

		res = append(res, cd)
	}

	return res, nil
}

/*
sortedKeys returns the sorted keys of a JSON object.
*/
func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
