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
	"strconv"

	"github.com/krotik/common/timeutil"
	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/revision"
)

/*
EndpointRevision is the revision endpoint URL (rooted). Handles everything under revision/...
*/
const EndpointRevision = api.APIRoot + APIv1 + "/revision/"

/*
RevisionTimeLocation is the location which is used for human readable revision times.
*/
var RevisionTimeLocation = "UTC"

/*
RevisionEndpointInst creates a new endpoint handler.
*/
func RevisionEndpointInst() api.RestEndpointHandler {
	return &revisionEndpoint{}
}

/*
Handler object for revision operations.
*/
type revisionEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles a revision query REST call.

GET /revision?offset=<offset>&limit=<limit>
GET /revision?construct=<construct id>
GET /revision?tag=<tag>
GET /revision/<id>
*/
func (re *revisionEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 0, 1, "") {
		return
	}

	store := api.TM.Revisions()

	if len(resources) == 1 {
		if rev, ok := re.revision(w, resources[0]); ok {
			writeJSON(w, re.revisionData(store, rev, true))
		}
		return
	}

	if tag := r.URL.Query().Get("tag"); tag != "" {
		rev := store.RevisionByTag(tag)
		if rev == nil {
			http.Error(w, "Unknown revision tag: "+tag, http.StatusNotFound)
			return
		}

		writeJSON(w, re.revisionData(store, rev, true))
		return
	}

	var revs []*revision.Revision

	if c := r.URL.Query().Get("construct"); c != "" {
		id, ok := parseID(w, c)
		if !ok {
			return
		}

		revs = store.RevisionsOf(id)

	} else {

		revs = store.Revisions()
	}

	offset, ok := queryParamPosNum(w, r, "offset")
	if !ok {
		return
	}

	limit, ok := queryParamPosNum(w, r, "limit")
	if !ok {
		return
	}

	w.Header().Add(HTTPHeaderTotalCount, strconv.Itoa(len(revs)))

	if offset > 0 {
		if offset > len(revs) {
			offset = len(revs)
		}
		revs = revs[offset:]
	}

	if limit >= 0 && limit < len(revs) {
		revs = revs[:limit]
	}

	res := make([]interface{}, 0, len(revs))
	for _, rev := range revs {
		res = append(res, re.revisionData(store, rev, false))
	}

	writeJSON(w, res)
}

/*
HandlePUT handles a REST call to tag a revision or to set its metadata.

PUT /revision/<id>

The body is an object with an optional tag and an optional metadata object.
*/
func (re *revisionEndpoint) HandlePUT(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 1, 1, "Need a revision id") {
		return
	}

	rev, ok := re.revision(w, resources[0])
	if !ok {
		return
	}

	obj, ok := readJSONBody(w, r)
	if !ok {
		return
	}

	var tag string
	var metadata map[string]interface{}

	if t, ok := obj["tag"]; ok {
		if tag, ok = t.(string); !ok || tag == "" {
			http.Error(w, "Tag must be a non-empty string", http.StatusBadRequest)
			return
		}
	}

	if m, ok := obj["metadata"]; ok {
		if metadata, ok = m.(map[string]interface{}); !ok {
			http.Error(w, "Metadata must be an object", http.StatusBadRequest)
			return
		}
	}

	store := api.TM.Revisions()

	if tag != "" {
		store.SetTag(rev, tag)
	}

	for _, k := range sortedKeys(metadata) {
		store.SetMetadata(rev, k, fmt.Sprint(metadata[k]))
	}

	writeJSON(w, re.revisionData(store, rev, false))
}

/*
revision looks up a revision from a resource string.
*/
func (re *revisionEndpoint) revision(w http.ResponseWriter, s string) (*revision.Revision, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		http.Error(w, "Invalid revision id: "+s, http.StatusBadRequest)
		return nil, false
	}

	rev := api.TM.Revisions().Revision(id)
	if rev == nil {
		http.Error(w, "Unknown revision: "+s, http.StatusNotFound)
		return nil, false
	}

	return rev, true
}

/*
revisionData returns the data of a revision. The changeset of the revision is
included if requested.
*/
func (re *revisionEndpoint) revisionData(store *revision.Store, rev *revision.Revision,
	withChanges bool) map[string]interface{} {

	ts := fmt.Sprint(store.Timestamp(rev).UnixNano() / 1000000)
	tsString, _ := timeutil.TimestampString(ts, RevisionTimeLocation)

	changes := store.Changeset(rev)

	metadata := make(map[string]interface{})
	for _, k := range store.MetadataKeys(rev) {
		metadata[k], _ = store.Metadata(rev, k)
	}

	res := map[string]interface{}{
		"id":        rev.ID(),
		"timestamp": ts,
		"time":      tsString,
		"tag":       store.Tag(rev),
		"metadata":  metadata,
		"changes":   len(changes),
	}

	if withChanges {
		if prev := store.Previous(rev); prev != nil {
			res["previous"] = prev.ID()
		}

		if next := store.Next(rev); next != nil {
			res["next"] = next.ID()
		}

		changeset := make([]interface{}, 0, len(changes))
		for _, c := range changes {
			changeset = append(changeset, map[string]interface{}{
				"event":   c.Kind.String(),
				"context": uint64(c.Context),
				"new":     data.PlainValue(c.NewValue),
				"old":     data.PlainValue(c.OldValue),
			})
		}

		res["changeset"] = changeset
	}

	return res
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (re *revisionEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/revision"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return the revision log.",
			"description": "Lists all revisions, all revisions which changed a given construct or the revision with a given tag.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "offset",
					"in":          "query",
					"description": "Offset in the revision list.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "limit",
					"in":          "query",
					"description": "Maximum number of returned revisions.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "construct",
					"in":          "query",
					"description": "Id of a construct.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "tag",
					"in":          "query",
					"description": "Tag of a revision.",
					"required":    false,
					"type":        "string",
				},
			},
			"responses": swaggerResponses("A list of revisions or a single revision."),
		},
	}

	s["paths"].(map[string]interface{})["/v1/revision/{id}"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return a revision.",
			"description": "Returns a revision with its changeset.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the revision."),
			},
			"responses": swaggerResponses("A revision."),
		},
		"put": map[string]interface{}{
			"summary":     "Tag a revision.",
			"description": "Sets the tag and metadata values of a revision.",
			"consumes": []string{
				"application/json",
			},
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the revision."),
				{
					"name":        "revision",
					"in":          "body",
					"description": "Object with a tag and a metadata object.",
					"required":    true,
					"schema": map[string]interface{}{
						"type": "object",
					},
				},
			},
			"responses": swaggerResponses("The modified revision."),
		},
	}

	addErrorDefinition(s)
}
