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
	"github.com/krotik/ecal/parser"
	"github.com/krotik/topicdb/topicmap"
)

/*
RemoveDuplicatesFunc removes all duplicate constructs of a topic map.
*/
type RemoveDuplicatesFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *RemoveDuplicatesFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	if err := checkArgs(args, 0, 0, ""); err != nil {
		return nil, err
	}

	count, err := f.TM.RemoveDuplicates()

	return float64(count), err
}

/*
DocString returns a descriptive string.
*/
func (f *RemoveDuplicatesFunc) DocString() (string, error) {
	return "Removes all duplicate constructs and returns the number of removed constructs.", nil
}

/*
CommitFunc waits for all background tasks of a topic map.
*/
type CommitFunc struct {
	TM *topicmap.Manager
}

/*
Run executes the ECAL function.
*/
func (f *CommitFunc) Run(instanceID string, vs parser.Scope, is map[string]interface{}, tid uint64, args []interface{}) (interface{}, error) {
	if err := checkArgs(args, 0, 0, ""); err != nil {
		return nil, err
	}

	return nil, f.TM.Commit()
}

/*
DocString returns a descriptive string.
*/
func (f *CommitFunc) DocString() (string, error) {
	return "Waits for all background tasks and returns their errors.", nil
}
