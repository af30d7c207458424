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
	"net/http"

	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
EndpointDuplicates is the duplicates endpoint URL (rooted). Handles everything under duplicates/...
*/
const EndpointDuplicates = api.APIRoot + APIv1 + "/duplicates/"

/*
EndpointCommit is the commit endpoint URL (rooted). Handles everything under commit/...
*/
const EndpointCommit = api.APIRoot + APIv1 + "/commit/"

/*
DuplicatesEndpointInst creates a new endpoint handler.
*/
func DuplicatesEndpointInst() api.RestEndpointHandler {
	return &duplicatesEndpoint{}
}

/*
Handler object for duplicate removal.
*/
type duplicatesEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandlePOST removes duplicates from the topic map or from a single topic.

POST /duplicates
POST /duplicates/<topic id>
*/
func (de *duplicatesEndpoint) HandlePOST(w http.ResponseWriter, r *http.Request, resources []string) {
	var removed int
	var err error

	if !checkTopicMap(w) || !checkResources(w, resources, 0, 1, "") {
		return
	}

	if len(resources) == 1 {
		var t data.ID
		var ok bool

		if t, ok = parseID(w, resources[0]); !ok {
			return
		}

		removed, err = api.TM.RemoveTopicDuplicates(t)

	} else {

		removed, err = api.TM.RemoveDuplicates()
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)
	writeJSON(w, map[string]interface{}{
		"removed": removed,
	})
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (de *duplicatesEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/duplicates"] = map[string]interface{}{
		"post": map[string]interface{}{
			"summary":     "Remove duplicates.",
			"description": "Removes all duplicate names, occurrences, variants, associations and roles from the topic map.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": swaggerResponses("Object with the number of removed duplicates."),
		},
	}

	s["paths"].(map[string]interface{})["/v1/duplicates/{id}"] = map[string]interface{}{
		"post": map[string]interface{}{
			"summary":     "Remove duplicates of a topic.",
			"description": "Removes all duplicate characteristics of a topic and all duplicates of the associations in which the topic plays a role.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the topic."),
			},
			"responses": swaggerResponses("Object with the number of removed duplicates."),
		},
	}

	addErrorDefinition(s)
}

/*
CommitEndpointInst creates a new endpoint handler.
*/
func CommitEndpointInst() api.RestEndpointHandler {
	return &commitEndpoint{}
}

/*
Handler object for commits.
*/
type commitEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandlePOST waits for all background tasks of the topic map.

POST /commit
*/
func (ce *commitEndpoint) HandlePOST(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 0, 0, "") {
		return
	}

	if err := api.TM.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)
	writeJSON(w, map[string]interface{}{
		"state": api.TM.State(),
	})
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ce *commitEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/commit"] = map[string]interface{}{
		"post": map[string]interface{}{
			"summary":     "Commit the topic map.",
			"description": "Waits until all submitted background tasks of the topic map have finished. Returns the errors of failed tasks.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": swaggerResponses("Object with the state of the topic map."),
		},
	}

	addErrorDefinition(s)
}
