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
EndpointInfoQuery is the info endpoint URL (rooted). Handles everything under info/...
*/
const EndpointInfoQuery = api.APIRoot + APIv1 + "/info/"

/*
InfoEndpointInst creates a new endpoint handler.
*/
func InfoEndpointInst() api.RestEndpointHandler {
	return &infoEndpoint{}
}

/*
Handler object for info queries.
*/
type infoEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles a info query REST call.

GET /info
GET /info/log
*/
func (ie *infoEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {

	res := make(map[string]interface{})

	if len(resources) > 0 {

		if resources[0] == "log" && len(resources) == 1 {

			// Server log is requested

			var lines []string

			if api.ServerLog != nil {
				lines = api.ServerLog.StringSlice()
			}

			if lines == nil {
				lines = []string{}
			}

			writeJSON(w, lines)
			return
		}

		http.Error(w, "Unknown info request", http.StatusBadRequest)
		return
	}

	if !checkTopicMap(w) {
		return
	}

	// Get general information

	tm := api.TM

	res["name"] = tm.Name()
	res["base"] = tm.BaseLocator().String()
	res["state"] = tm.State()
	res["listeners"] = tm.Listeners()
	res["scripting"] = api.SI != nil

	features := tm.Features()
	res["features"] = map[string]interface{}{
		"history":                       features.History,
		"automaticMerging":              features.AutomaticMerging,
		"reificationDeletionConstraint": features.ReificationDeletionConstraint,
		"mergeByTopicName":              features.MergeByTopicName,
		"readOnly":                      features.ReadOnly,
	}

	counts := make(map[string]interface{})
	for _, k := range []data.Kind{data.KindTopic, data.KindName, data.KindOccurrence,
		data.KindVariant, data.KindAssociation, data.KindRole} {

		counts[k.String()] = tm.Count(k)
	}
	res["counts"] = counts

	revs := tm.Revisions()
	res["revisions"] = revs.Len()

	if last := revs.Last(); last != nil {
		res["lastRevision"] = last.ID()
	}

	if api.Changes != nil {
		res["subscriptions"] = api.Changes.Subscriptions()
	}

	writeJSON(w, res)
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ie *infoEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/info"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return general topic map information.",
			"description": "The info endpoint returns general topic map information such as the enabled features, construct counts, the revision log size and the registered listeners.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": swaggerResponses("A key-value map."),
		},
	}

	s["paths"].(map[string]interface{})["/v1/info/log"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return the latest server log messages.",
			"description": "The info log endpoint returns the latest log messages of the server.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"responses": swaggerResponses("A list of log messages."),
		},
	}

	addErrorDefinition(s)
}
