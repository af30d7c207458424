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
	"strings"

	"github.com/krotik/common/stringutil"
	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/index"
)

/*
EndpointIndexQuery is the index endpoint URL (rooted). Handles everything under index/...
*/
const EndpointIndexQuery = api.APIRoot + APIv1 + "/index/"

/*
IndexEndpointInst creates a new endpoint handler.
*/
func IndexEndpointInst() api.RestEndpointHandler {
	return &indexEndpoint{}
}

/*
Handler object for index queries.
*/
type indexEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
comparators are the known sort orders of index results.
*/
var comparators = map[string]index.Comparator{
	"id":    index.ByID,
	"name":  index.ByName,
	"value": index.ByValue,
}

/*
HandleGET handles an index query REST call.

GET /index/<query>/[<kind or id>]?offset=<offset>&limit=<limit>&sort=<order>&export=<bool>

Known queries are:

	types/<topic>            Types of a topic
	instances/<type>         Instances of a topic type
	topictypes               All topics which are used as topic types
	topicsbytypes            Topics with given types (type=<id>&all=<bool>)
	typed/<kind>/<type>      Constructs of a kind with a given type
	constructtypes/<kind>    Types of all constructs of a kind
	supertypes/<topic>       Transitive supertypes of a topic
	subtypes/<topic>         Transitive subtypes of a topic
	scoped/<kind>            Constructs in scope (theme=<id>&all=<bool>)
	themes/<kind>            All themes used in scopes of a kind
	scopes/<kind>            All scopes used by a kind
	names                    Names with a value (value=<value>)
	occurrences              Occurrences with a value (value=<value>&datatype=<iri>)
	variants                 Variants with a value (value=<value>&datatype=<iri>)
	reified/<kind>           Reified constructs of a kind
	reifiers                 All reifiers
	identifiers              Constructs by identifier (pattern=<regex>&type=<ii|si|sl>)
	stats                    Cache statistics
*/
func (ie *indexEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {

	if !checkTopicMap(w) || !checkResources(w, resources, 1, 3, "Need an index query") {
		return
	}

	if api.IX == nil {
		http.Error(w, "No indexes available", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()
	var res *index.Result
	var err error

	arg := func(i int, desc string) (string, bool) {
		if len(resources) <= i {
			http.Error(w, fmt.Sprintf("Query %v needs a %v", resources[0], desc), http.StatusBadRequest)
			return "", false
		}
		return resources[i], true
	}

	argID := func(i int) (data.ID, bool) {
		s, ok := arg(i, "construct id")
		if ok {
			return parseID(w, s)
		}
		return data.NoID, false
	}

	argKind := func(i int) (data.Kind, bool) {
		s, ok := arg(i, "construct kind")
		if !ok {
			return data.KindUnknown, false
		}
		k := kindByName(s)
		if k == data.KindUnknown {
			http.Error(w, "Unknown construct kind: "+s, http.StatusBadRequest)
			return data.KindUnknown, false
		}
		return k, true
	}

	queryIDs := func(param string) ([]data.ID, bool) {
		var ids []data.ID
		for _, s := range query[param] {
			id, ok := parseID(w, s)
			if !ok {
				return nil, false
			}
			ids = append(ids, id)
		}
		return ids, true
	}

	switch resources[0] {

	case "stats":
		stats := make(map[string]interface{})
		for name, s := range api.IX.Stats() {
			stats[name] = map[string]interface{}{
				"hits":   s[0],
				"misses": s[1],
			}
		}
		writeJSON(w, stats)
		return

	case "scopes":
		kind, ok := argKind(1)
		if !ok {
			return
		}

		scopes, err := api.IX.Scoped.Scopes(kind)
		if err != nil {
			writeError(w, err)
			return
		}

		list := make([]interface{}, 0, len(scopes))
		for _, s := range scopes {
			list = append(list, data.PlainValue(s))
		}

		w.Header().Add(HTTPHeaderTotalCount, strconv.Itoa(len(list)))
		writeJSON(w, list)
		return

	case "types":
		if t, ok := argID(1); ok {
			res, err = api.IX.TypeInstance.Types(t)
		}

	case "instances":
		if t, ok := argID(1); ok {
			res, err = api.IX.TypeInstance.Instances(t)
		}

	case "topictypes":
		res, err = api.IX.TypeInstance.TopicTypes()

	case "topicsbytypes":
		if types, ok := queryIDs("type"); ok {
			res, err = api.IX.TypeInstance.TopicsByTypes(types, stringutil.IsTrueValue(query.Get("all")))
		}

	case "typed":
		if kind, ok := argKind(1); ok {
			if t, ok := argID(2); ok {
				res, err = api.IX.TypeInstance.TypedConstructs(t, kind)
			}
		}

	case "constructtypes":
		if kind, ok := argKind(1); ok {
			res, err = api.IX.TypeInstance.ConstructTypes(kind)
		}

	case "supertypes":
		if t, ok := argID(1); ok {
			res, err = api.IX.SupertypeSubtype.Supertypes(t)
		}

	case "subtypes":
		if t, ok := argID(1); ok {
			res, err = api.IX.SupertypeSubtype.Subtypes(t)
		}

	case "scoped":
		if kind, ok := argKind(1); ok {
			if themes, ok := queryIDs("theme"); ok {
				res, err = api.IX.Scoped.ConstructsByThemes(kind, themes, stringutil.IsTrueValue(query.Get("all")))
			}
		}

	case "themes":
		if kind, ok := argKind(1); ok {
			res, err = api.IX.Scoped.Themes(kind)
		}

	case "names", "occurrences", "variants":
		value, ok := query["value"]
		if !ok {
			http.Error(w, "Query string for value is required", http.StatusBadRequest)
			return
		}

		kind := map[string]data.Kind{
			"names":       data.KindName,
			"occurrences": data.KindOccurrence,
			"variants":    data.KindVariant,
		}[resources[0]]

		var datatype data.Locator

		if dt := query.Get("datatype"); dt != "" {
			if datatype, err = data.NewLocator(dt); err != nil {
				writeError(w, err)
				return
			}
		} else if kind == data.KindName {
			datatype = data.XSDString
		}

		res, err = api.IX.Literal.Literals(kind, value[0], datatype)

	case "reified":
		if kind, ok := argKind(1); ok {
			res, err = api.IX.Reification.Reified(kind)
		}

	case "reifiers":
		res, err = api.IX.Reification.Reifiers()

	case "identifiers":
		pattern := query.Get("pattern")

		switch query.Get("type") {
		case "ii":
			res, err = api.IX.Identity.ConstructsByItemIdentifier(pattern)
		case "si":
			res, err = api.IX.Identity.TopicsBySubjectIdentifier(pattern)
		case "sl":
			res, err = api.IX.Identity.TopicsBySubjectLocator(pattern)
		case "":
			res, err = api.IX.Identity.ConstructsByIdentifier(pattern)
		default:
			http.Error(w, "Identifier type must be ii, si or sl", http.StatusBadRequest)
			return
		}

	default:
		http.Error(w, "Unknown index query: "+resources[0], http.StatusBadRequest)
		return
	}

	if err != nil {
		writeError(w, err)
		return
	} else if res == nil {

		// An error response was already written

		return
	}

	ie.writeResult(w, r, res)
}

/*
writeResult writes a page of an index result.
*/
func (ie *indexEndpoint) writeResult(w http.ResponseWriter, r *http.Request, res *index.Result) {
	var ids []data.ID

	offset, ok := queryParamPosNum(w, r, "offset")
	if !ok {
		return
	} else if offset < 0 {
		offset = 0
	}

	limit, ok := queryParamPosNum(w, r, "limit")
	if !ok {
		return
	}

	if order := r.URL.Query().Get("sort"); order != "" {
		c, ok := comparators[order]
		if !ok {
			http.Error(w, "Unknown sort order: "+order, http.StatusBadRequest)
			return
		}
		ids = res.SortedPage(c, offset, limit)
	} else {
		ids = res.Page(offset, limit)
	}

	w.Header().Add(HTTPHeaderTotalCount, strconv.Itoa(res.Size()))

	list := make([]interface{}, 0, len(ids))

	if stringutil.IsTrueValue(r.URL.Query().Get("export")) {
		for _, id := range ids {
			if exp, err := api.TM.Export(id); err == nil {
				list = append(list, exp)
			}
		}
	} else {
		for _, id := range ids {
			list = append(list, uint64(id))
		}
	}

	writeJSON(w, list)
}

/*
kindByName returns a construct kind by its name.
*/
func kindByName(name string) data.Kind {
	name = strings.ToLower(name)

	for k := data.KindTopicMap; k <= data.KindRole; k++ {
		if k.String() == name {
			return k
		}
	}

	return data.KindUnknown
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ie *indexEndpoint) SwaggerDefs(s map[string]interface{}) {

	s["paths"].(map[string]interface{})["/v1/index/{query}"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     "Run a cached index query.",
			"description": "Index queries return lists of construct ids. Known queries are types, instances, topictypes, topicsbytypes, typed, constructtypes, supertypes, subtypes, scoped, themes, scopes, names, occurrences, variants, reified, reifiers, identifiers and stats. Queries which need a construct kind or id take them as further path elements.",
			"produces": []string{
				"text/plain",
				"application/json",
			},
			"parameters": []map[string]interface{}{
				{
					"name":        "query",
					"in":          "path",
					"description": "Name of the index query.",
					"required":    true,
					"type":        "string",
				},
				{
					"name":        "offset",
					"in":          "query",
					"description": "Offset in the result.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "limit",
					"in":          "query",
					"description": "Maximum number of returned constructs.",
					"required":    false,
					"type":        "integer",
				},
				{
					"name":        "sort",
					"in":          "query",
					"description": "Sort order of the result (id, name or value).",
					"required":    false,
					"type":        "string",
				},
				{
					"name":        "export",
					"in":          "query",
					"description": "Return exported constructs instead of ids.",
					"required":    false,
					"type":        "boolean",
				},
			},
			"responses": swaggerResponses("A list of construct ids."),
		},
	}

	addErrorDefinition(s)
}
