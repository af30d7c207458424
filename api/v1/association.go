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

	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
EndpointAssociation is the association endpoint URL (rooted). Handles everything under association/...
*/
const EndpointAssociation = api.APIRoot + APIv1 + "/association/"

/*
AssociationEndpointInst creates a new endpoint handler.
*/
func AssociationEndpointInst() api.RestEndpointHandler {
	return &associationEndpoint{}
}

/*
Handler object for association operations.
*/
type associationEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET handles an association query REST call.

GET /association?player=<topic id>
GET /association/<id>
*/
func (ae *associationEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 0, 1, "") {
		return
	}

	if len(resources) == 1 {
		id, ok := parseID(w, resources[0])
		if ok && ae.checkAssociation(w, id) {
			exp, err := api.TM.Export(id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, exp)
		}
		return
	}

	var assocs []data.ID

	if p := r.URL.Query().Get("player"); p != "" {
		player, ok := parseID(w, p)
		if !ok {
			return
		}
		assocs = api.TM.AssociationsPlayed(player)
	} else {
		assocs = api.TM.Associations()
	}

	assocs = data.SortedIDs(assocs)

	w.Header().Add(HTTPHeaderTotalCount, strconv.Itoa(len(assocs)))

	res := make([]interface{}, 0, len(assocs))
	for _, a := range assocs {
		if exp, err := api.TM.Export(a); err == nil {
			res = append(res, exp)
		}
	}

	writeJSON(w, res)
}

/*
HandlePOST handles a REST call to create an association.

POST /association

The body is an object with a type, an optional scope and a list of roles. Each
role has a type and a player.
*/
func (ae *associationEndpoint) HandlePOST(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 0, 0, "") {
		return
	}

	obj, ok := readJSONBody(w, r)
	if !ok {
		return
	}

	typ, ok := idList(obj["type"])
	if !ok || len(typ) != 1 {
		http.Error(w, "Association needs a type", http.StatusBadRequest)
		return
	}

	themes, ok := idList(obj["scope"])
	if !ok {
		http.Error(w, "Scope must be a list of construct ids", http.StatusBadRequest)
		return
	}

	roleList, ok := obj["roles"].([]interface{})
	if !ok || len(roleList) == 0 {
		http.Error(w, "Association needs a list of roles", http.StatusBadRequest)
		return
	}

	var roles [][2]data.ID

	for _, i := range roleList {
		role, ok := i.(map[string]interface{})
		if !ok {
			http.Error(w, "Roles must be objects", http.StatusBadRequest)
			return
		}

		rtyp, ok1 := idList(role["type"])
		player, ok2 := idList(role["player"])

		if !ok1 || !ok2 || len(rtyp) != 1 || len(player) != 1 {
			http.Error(w, "Roles need a type and a player", http.StatusBadRequest)
			return
		}

		roles = append(roles, [2]data.ID{rtyp[0], player[0]})
	}

	assoc, err := api.TM.CreateAssociation(typ[0], themes)

	if err == nil {
		for _, role := range roles {
			if _, err = api.TM.CreateRole(assoc, role[0], role[1]); err != nil {

				// Do not leave an incomplete association behind

				api.TM.RemoveConstruct(assoc)
				break
			}
		}
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)

	exp, err := api.TM.Export(assoc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, exp)
}

/*
HandleDELETE handles a REST call to remove an association.

DELETE /association/<id>
*/
func (ae *associationEndpoint) HandleDELETE(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 1, 1, "Need an association id") {
		return
	}

	id, ok := parseID(w, resources[0])
	if !ok || !ae.checkAssociation(w, id) {
		return
	}

	if err := api.TM.RemoveConstruct(id); err != nil {
		writeError(w, err)
		return
	}

	writeRevision(w)
}

/*
checkAssociation checks that a given id is an association.
*/
func (ae *associationEndpoint) checkAssociation(w http.ResponseWriter, id data.ID) bool {
	if api.TM.Kind(id) != data.KindAssociation {
		http.Error(w, fmt.Sprint("Unknown association: ", id), http.StatusNotFound)
		return false
	}
	return true
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ae *associationEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/association"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return associations.",
			"description": "Lists all associations or all associations in which a given topic plays a role.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "player",
					"in":          "query",
					"description": "Id of a role player.",
					"required":    false,
					"type":        "integer",
				},
			},
			"responses": swaggerResponses("A list of associations."),
		},
		"post": map[string]interface{}{
			"summary":     "Create an association.",
			"description": "Creates an association with a type, a scope and a list of roles.",
			"consumes": []string{
				"application/json",
			},
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "association",
					"in":          "body",
					"description": "Association object with type, scope and roles (type and player).",
					"required":    true,
					"schema": map[string]interface{}{
						"type": "object",
					},
				},
			},
			"responses": swaggerResponses("The created association."),
		},
	}

	s["paths"].(map[string]interface{})["/v1/association/{id}"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Return an association.",
			"description": "Returns an association with all its roles.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the association."),
			},
			"responses": swaggerResponses("An association."),
		},
		"delete": map[string]interface{}{
			"summary":     "Remove an association.",
			"description": "Removes an association with all its roles.",
			"produces": []string{
				"text/plain",
			},
			"parameters": []map[string]interface{}{
				swaggerIDParam("id", "Id of the association."),
			},
			"responses": swaggerResponses("The association was removed."),
		},
	}

	addErrorDefinition(s)
}
