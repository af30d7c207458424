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
Package tmfunc contains the topic map functions which are available in ECAL.

Construct IDs are passed to and returned from ECAL as numbers.
*/
package tmfunc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/krotik/common/stringutil"
	"github.com/krotik/ecal/parser"
	"github.com/krotik/ecal/scope"
	"github.com/krotik/ecal/stdlib"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
PackageName is the name of the ECAL stdlib package which contains the topic
map functions.
*/
const PackageName = "tm"

/*
AddStdlibFunctions adds all topic map functions to the ECAL stdlib.
*/
func AddStdlibFunctions(tm *topicmap.Manager) {
	stdlib.AddStdlibPkg(PackageName, "TopicDB topic map functions")

	for name, f := range Functions(tm) {
		stdlib.AddStdlibFunc(PackageName, name, f)
	}
}

/*
Function is a topic map function which can be called from ECAL.
*/
type Function interface {

	/*
	   Run executes the function.
	*/
	Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error)

	/*
	   DocString returns a descriptive string.
	*/
	DocString() (string, error)
}

/*
Functions returns all topic map functions for a given topic map.
*/
func Functions(tm *topicmap.Manager) map[string]Function {
	return map[string]Function{
		"createTopic":      &CreateTopicFunc{tm},
		"topicBySI":        &TopicBySIFunc{tm},
		"fetch":            &FetchFunc{tm},
		"addName":          &AddNameFunc{tm},
		"addOccurrence":    &AddOccurrenceFunc{tm},
		"addType":          &AddTypeFunc{tm},
		"associate":        &AssociateFunc{tm},
		"mergeTopics":      &MergeTopicsFunc{tm},
		"removeTopic":      &RemoveTopicFunc{tm},
		"removeDuplicates": &RemoveDuplicatesFunc{tm},
		"commit":           &CommitFunc{tm},
	}
}

/*
toID converts an ECAL value into a construct ID.
*/
func toID(v interface{}) (data.ID, error) {
	switch val := v.(type) {
	case float64:
		if val >= 0 && val == math.Trunc(val) {
			return data.ID(val), nil
		}
	case data.ID:
		return val, nil
	case uint64:
		return data.ID(val), nil
	case int:
		if val >= 0 {
			return data.ID(val), nil
		}
	case string:
		if res, err := strconv.ParseUint(val, 10, 64); err == nil {
			return data.ID(res), nil
		}
	}

	return data.NoID, fmt.Errorf("Parameter %v is not a construct ID", v)
}

/*
toIDs converts a list of ECAL values into construct IDs.
*/
func toIDs(args []interface{}) ([]data.ID, error) {
	res := make([]data.ID, 0, len(args))

	for _, a := range args {
		id, err := toID(a)
		if err != nil {
			return nil, err
		}
		res = append(res, id)
	}

	return res, nil
}

/*
fromID converts a construct ID into an ECAL value.
*/
func fromID(id data.ID) interface{} {
	if id == data.NoID {
		return nil
	}
	return float64(id)
}

/*
checkArgs checks the number of arguments of a function call.
*/
func checkArgs(args []interface{}, min int, max int, desc string) error {
	if len(args) < min || len(args) > max {
		if max == 0 {
			return fmt.Errorf("Function does not require any parameters")
		} else if min == max {
			return fmt.Errorf("Function requires %v parameter%v: %v", min, stringutil.Plural(min), desc)
		}
		return fmt.Errorf("Function requires %v to %v parameters: %v", min, max, desc)
	}
	return nil
}

/*
ECALValue converts a plain value into an ECAL value. Numbers become float64
values, maps and lists are converted recursively.
*/
func ECALValue(v interface{}) interface{} {
	switch val := v.(type) {
	case uint64:
		return float64(val)
	case int:
		return float64(val)
	case data.ID:
		return float64(val)
	case []interface{}:
		res := make([]interface{}, len(val))
		for i, e := range val {
			res[i] = ECALValue(e)
		}
		return res
	case map[string]interface{}:
		res := make(map[interface{}]interface{}, len(val))
		for k, e := range val {
			res[k] = ECALValue(e)
		}
		return res
	}

	return scope.ConvertJSONToECALObject(v)
}
