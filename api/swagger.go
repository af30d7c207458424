/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

/*
EndpointSwagger is the swagger endpoint URL (rooted). Handles swagger.json/
*/
const EndpointSwagger = APIRoot + "/swagger.json/"

/*
SwaggerEndpointInst creates a new endpoint handler.
*/
func SwaggerEndpointInst() RestEndpointHandler {
	return &swaggerEndpoint{}
}

/*
Handler object for swagger operations.
*/
type swaggerEndpoint struct {
	*DefaultEndpointHandler
}

/*
HandleGET returns the swagger definition of the REST API.
*/
func (a *swaggerEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {
	w.Header().Set("content-type", "application/json; charset=utf-8")

	ret := json.NewEncoder(w)
	ret.Encode(swaggerDefinition(a))
}

/*
swaggerDefinition collects the definitions of all registered endpoints. Every
operation is tagged with the resource it works on.
*/
func swaggerDefinition(root RestEndpointHandler) map[string]interface{} {
	paths := map[string]interface{}{}

	data := map[string]interface{}{
		"swagger":     "2.0",
		"host":        APIHost,
		"schemes":     APISchemes,
		"basePath":    APIRoot,
		"produces":    []string{"application/json"},
		"paths":       paths,
		"definitions": map[string]interface{}{},
	}

	root.SwaggerDefs(data)

	urls := make([]string, 0, len(registered))
	for url := range registered {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	for _, url := range urls {
		registered[url]().SwaggerDefs(data)
	}

	// Tag all operations by their resource

	tagSet := make(map[string]bool)

	for path, ops := range paths {
		tag := resourceTag(path)
		tagSet[tag] = true

		for _, op := range ops.(map[string]interface{}) {
			if opDef, ok := op.(map[string]interface{}); ok {
				opDef["tags"] = []string{tag}
			}
		}
	}

	tagNames := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tagNames = append(tagNames, tag)
	}
	sort.Strings(tagNames)

	tags := make([]map[string]interface{}, 0, len(tagNames))
	for _, tag := range tagNames {
		tags = append(tags, map[string]interface{}{"name": tag})
	}

	data["tags"] = tags

	return data
}

/*
resourceTag returns the resource name of a swagger path. The API version
prefix is ignored e.g. /v1/topic/{id} is tagged as topic.
*/
func resourceTag(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) > 1 && strings.HasPrefix(parts[0], "v") {
		if _, err := strconv.Atoi(parts[0][1:]); err == nil {
			return parts[1]
		}
	}

	return parts[0]
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (a *swaggerEndpoint) SwaggerDefs(s map[string]interface{}) {
	info := map[string]interface{}{
		"title":       "TopicDB API",
		"description": "Query and modify the TopicDB topic map.",
		"version":     APIVersion,
	}

	// Describe the served topic map

	if TM != nil {
		info["x-topicmap"] = map[string]interface{}{
			"name":        TM.Name(),
			"baseLocator": string(TM.BaseLocator()),
		}
	}

	s["info"] = info
}
