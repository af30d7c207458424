/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package tmfunc

import (
	"fmt"

	"github.com/krotik/common/stringutil"
	"github.com/krotik/ecal/parser"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
CreateTopicFunc creates a new topic. If a subject identifier is given then an
existing topic with this subject identifier is returned.
*/
type CreateTopicFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *CreateTopicFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var id data.ID

	err := checkArgs(args, 0, 1, "optionally a subject identifier")

	if err == nil {
		if len(args) == 0 {
			id, err = f.TM.CreateTopic()
		} else {
			var loc data.Locator

			if loc, err = data.NewLocator(fmt.Sprint(args[0])); err == nil {
				id, err = f.TM.CreateTopicBySubjectIdentifier(loc)
			}
		}
	}

	return fromID(id), err
}

/*
DocString returns a descriptive string.
*/
func (f *CreateTopicFunc) DocString() (string, error) {
	return "Creates a new topic or returns the topic with a given subject identifier.", nil
}

/*
TopicBySIFunc looks up a topic by its subject identifier.
*/
type TopicBySIFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *TopicBySIFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 1, "subject identifier"); err != nil {
		return nil, err
	}

	return fromID(f.TM.TopicBySubjectIdentifier(data.Locator(fmt.Sprint(args[0])))), nil
}

/*
DocString returns a descriptive string.
*/
func (f *TopicBySIFunc) DocString() (string, error) {
	return "Returns the topic with a given subject identifier or null.", nil
}

/*
FetchFunc returns a construct with all its characteristics.
*/
type FetchFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *FetchFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var res interface{}

	err := checkArgs(args, 1, 1, "construct ID")

	if err == nil {
		var id data.ID

		if id, err = toID(args[0]); err == nil {
			var exp map[string]interface{}

			if exp, err = f.TM.Export(id); err == nil {
				res = ECALValue(exp)
			}
		}
	}

	return res, err
}

/*
DocString returns a descriptive string.
*/
func (f *FetchFunc) DocString() (string, error) {
	return "Returns a construct with all its characteristics as a map.", nil
}

/*
AddNameFunc adds a name to a topic.
*/
type AddNameFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *AddNameFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var id data.ID

	err := checkArgs(args, 2, 3, "topic, value and optionally a name type")

	if err == nil {
		var t, typ data.ID

		if t, err = toID(args[0]); err == nil && len(args) > 2 {
			typ, err = toID(args[2])
		}

		if err == nil {
			id, err = f.TM.CreateName(t, typ, fmt.Sprint(args[1]), nil)
		}
	}

	return fromID(id), err
}

/*
DocString returns a descriptive string.
*/
func (f *AddNameFunc) DocString() (string, error) {
	return "Adds a name to a topic. Without a type the default name type is used.", nil
}

/*
AddOccurrenceFunc adds an occurrence to a topic.
*/
type AddOccurrenceFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *AddOccurrenceFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var id data.ID

	err := checkArgs(args, 3, 4, "topic, occurrence type, value and optionally a datatype")

	if err == nil {
		var t, typ data.ID
		var dt data.Locator

		if len(args) > 3 {
			dt = data.Locator(fmt.Sprint(args[3]))
		}

		if t, err = toID(args[0]); err == nil {
			if typ, err = toID(args[1]); err == nil {
				id, err = f.TM.CreateOccurrence(t, typ, fmt.Sprint(args[2]), dt, nil)
			}
		}
	}

	return fromID(id), err
}

/*
DocString returns a descriptive string.
*/
func (f *AddOccurrenceFunc) DocString() (string, error) {
	return "Adds an occurrence to a topic.", nil
}

/*
AddTypeFunc adds a type to a topic.
*/
type AddTypeFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *AddTypeFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	err := checkArgs(args, 2, 2, "topic and type")

	if err == nil {
		var ids []data.ID

		if ids, err = toIDs(args); err == nil {
			err = f.TM.AddType(ids[0], ids[1])
		}
	}

	return nil, err
}

/*
DocString returns a descriptive string.
*/
func (f *AddTypeFunc) DocString() (string, error) {
	return "Adds a type to a topic.", nil
}

/*
AssociateFunc creates an association with a list of role type and player pairs.
*/
type AssociateFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *AssociateFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	var ids []data.ID
	var assoc data.ID
	var err error

	if len(args) < 3 || len(args)%2 != 1 {
		return nil, fmt.Errorf("Function requires an association type and pairs of role type and player")
	}

	if ids, err = toIDs(args); err == nil {
		if assoc, err = f.TM.CreateAssociation(ids[0], nil); err == nil {
			for i := 1; i < len(ids) && err == nil; i += 2 {
				_, err = f.TM.CreateRole(assoc, ids[i], ids[i+1])
			}

			if err != nil {
				f.TM.RemoveConstruct(assoc)
				assoc = data.NoID
			}
		}
	}

	return fromID(assoc), err
}

/*
DocString returns a descriptive string.
*/
func (f *AssociateFunc) DocString() (string, error) {
	return "Creates an association from a type and pairs of role type and player.", nil
}

/*
MergeTopicsFunc merges a source topic into a target topic.
*/
type MergeTopicsFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *MergeTopicsFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	err := checkArgs(args, 2, 2, "target topic and source topic")

	if err == nil {
		var ids []data.ID

		if ids, err = toIDs(args); err == nil {
			err = f.TM.MergeTopics(ids[0], ids[1])
		}
	}

	return nil, err
}

/*
DocString returns a descriptive string.
*/
func (f *MergeTopicsFunc) DocString() (string, error) {
	return "Merges a source topic into a target topic.", nil
}

/*
RemoveTopicFunc removes a topic.
*/
type RemoveTopicFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *RemoveTopicFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	err := checkArgs(args, 1, 2, "topic and optionally a cascade flag")

	if err == nil {
		var t data.ID

		if t, err = toID(args[0]); err == nil {
			cascade := len(args) > 1 && stringutil.IsTrueValue(fmt.Sprint(args[1]))
			err = f.TM.RemoveTopic(t, cascade)
		}
	}

	return nil, err
}

/*
DocString returns a descriptive string.
*/
func (f *RemoveTopicFunc) DocString() (string, error) {
	return "Removes a topic. With the cascade flag all constructs which depend on the topic are removed as well.", nil
}
