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
Package v1 contains TopicDB REST API Version 1.

# Topic endpoint

/topic

The topic endpoint can be used to create, query, modify and remove topics.

# Revision endpoint

/revision

The revision endpoint returns the revision log of the topic map.

# Index endpoint

/index

The index endpoint provides cached queries on types, instances, scopes,
literals and identifiers.

# Maintenance endpoints

/duplicates

Removes all duplicates from the topic map.

/commit

Waits for all submitted background tasks of the topic map.

# Info endpoint

/info

Returns general information about the topic map.

# Changes endpoint

/changes

Websocket endpoint which streams change events of the topic map.
*/
package v1

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/util"
)

/*
APIv1 is the directory for version 1 of the API
*/
const APIv1 = "/v1"

/*
HTTPHeaderTotalCount is a special header value containing the total count of objects.
*/
const HTTPHeaderTotalCount = "X-Total-Count"

/*
HTTPHeaderRevision is a special header value containing the last revision of
the topic map after a modification.
*/
const HTTPHeaderRevision = "X-Revision"

/*
V1EndpointMap is a map of urls to endpoints for version 1 of the API
*/
var V1EndpointMap = map[string]api.RestEndpointInst{
	EndpointTopic:       TopicEndpointInst,
	EndpointRevision:    RevisionEndpointInst,
	EndpointIndexQuery:  IndexEndpointInst,
	EndpointDuplicates:  DuplicatesEndpointInst,
	EndpointCommit:      CommitEndpointInst,
	EndpointAssociation: AssociationEndpointInst,
	EndpointInfoQuery:   InfoEndpointInst,
	EndpointChanges:     ChangesEndpointInst,
}

// Helper functions
// ================

/*
checkResources check given resources for a GET request.
*/
func checkResources(w http.ResponseWriter, resources []string, requiredMin int, requiredMax int, errorMsg string) bool {
	if len(resources) < requiredMin {
		http.Error(w, errorMsg, http.StatusBadRequest)
		return false
	} else if len(resources) > requiredMax {
		http.Error(w, "Invalid resource specification: "+strings.Join(resources[1:], "/"), http.StatusBadRequest)
		return false
	}
	return true
}

/*
Extract a positive number from a query parameter. Returns -1 and true
if the parameter was not given.
*/
func queryParamPosNum(w http.ResponseWriter, r *http.Request, param string) (int, bool) {

	val := r.URL.Query().Get(param)

	if val == "" {
		return -1, true
	}

	num, err := strconv.Atoi(val)

	if err != nil || num < 0 {
		http.Error(w, "Invalid parameter value: "+param+" should be a positive integer number", http.StatusBadRequest)
		return -1, false
	}

	return num, true
}

/*
parseID parses a construct id from a resource string.
*/
func parseID(w http.ResponseWriter, s string) (data.ID, bool) {
	id, err := data.ParseID(s)

	if err != nil || id == data.NoID {
		http.Error(w, "Invalid construct id: "+s, http.StatusBadRequest)
		return data.NoID, false
	}

	return id, true
}

/*
checkTopicMap writes an error if no topic map is served.
*/
func checkTopicMap(w http.ResponseWriter) bool {
	if api.TM == nil {
		http.Error(w, "No topic map available", http.StatusServiceUnavailable)
		return false
	}
	return true
}

/*
readJSONBody decodes the JSON object in the body of a request.
*/
func readJSONBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	var obj map[string]interface{}

	body, err := ioutil.ReadAll(r.Body)

	if err == nil {
		err = json.Unmarshal(body, &obj)
	}

	if err != nil {
		http.Error(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return obj, true
}

/*
stringList extracts a list of strings from a decoded JSON value. A single
string is accepted as a list with one element.
*/
func stringList(v interface{}) ([]string, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case string:
		return []string{val}, true
	case []interface{}:
		res := make([]string, 0, len(val))
		for _, i := range val {
			s, ok := i.(string)
			if !ok {
				return nil, false
			}
			res = append(res, s)
		}
		return res, true
	}

	return nil, false
}

/*
idList extracts a list of construct ids from a decoded JSON value.
*/
func idList(v interface{}) ([]data.ID, bool) {
	var res []data.ID

	add := func(i interface{}) bool {
		switch val := i.(type) {
		case float64:
			if val < 1 || val != float64(uint64(val)) {
				return false
			}
			res = append(res, data.ID(val))
			return true
		case string:
			id, err := data.ParseID(val)
			if err != nil || id == data.NoID {
				return false
			}
			res = append(res, id)
			return true
		}
		return false
	}

	switch val := v.(type) {
	case nil:
		return nil, true
	case []interface{}:
		for _, i := range val {
			if !add(i) {
				return nil, false
			}
		}
		return res, true
	}

	return res, add(v)
}

/*
writeJSON writes a JSON response.
*/
func writeJSON(w http.ResponseWriter, obj interface{}) {
	w.Header().Set("content-type", "application/json; charset=utf-8")

	ret := json.NewEncoder(w)
	ret.Encode(obj)
}

/*
writeRevision writes the id of the last revision into the response header.
*/
func writeRevision(w http.ResponseWriter) {
	if last := api.TM.Revisions().Last(); last != nil {
		w.Header().Set(HTTPHeaderRevision, strconv.FormatUint(last.ID(), 10))
	}
}

/*
errorStatus maps a topic map error to a HTTP status code.
*/
func errorStatus(err error) int {
	var te *util.TopicMapError

	if !errors.As(err, &te) {
		return http.StatusInternalServerError
	}

	switch te.Type {
	case util.ErrIdentityConflict, util.ErrConstructInUse, util.ErrConcurrentAccess:
		return http.StatusConflict
	case util.ErrNotSupported:
		return http.StatusForbidden
	case util.ErrClosed:
		return http.StatusServiceUnavailable
	case util.ErrModelConstraint:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

/*
writeError writes an error response for a topic map error.
*/
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), errorStatus(err))
}

/*
swaggerIDParam is the swagger definition of a construct id path parameter.
*/
func swaggerIDParam(name string, desc string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "path",
		"description": desc,
		"required":    true,
		"type":        "integer",
	}
}

/*
swaggerResponses returns the standard responses of an endpoint.
*/
func swaggerResponses(desc string) map[string]interface{} {
	return map[string]interface{}{
		"200": map[string]interface{}{
			"description": desc,
		},
		"default": map[string]interface{}{
			"description": "Error response",
			"schema": map[string]interface{}{
				"$ref": "#/definitions/Error",
			},
		},
	}
}

/*
addErrorDefinition adds the generic error object to the swagger definitions.
*/
func addErrorDefinition(s map[string]interface{}) {
	s["definitions"].(map[string]interface{})["Error"] = map[string]interface{}{
		"description": "A human readable error mesage.",
		"type":        "string",
	}
}
