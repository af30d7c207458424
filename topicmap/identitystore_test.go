/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package topicmap

import (
	"fmt"
	"testing"

	"github.com/krotik/topicdb/topicmap/data"
)

func TestIdentityStoreRedirects(t *testing.T) {
	is := newIdentityStore()

	var topics []data.ID

	for i := 0; i < 5; i++ {
		topics = append(topics, is.newConstruct(data.KindTopic, data.NoID))
	}

	// Merge a chain of topics: 1 into 2, 2 into 3, 3 into 4

	for i := 0; i < 3; i++ {
		is.remove(topics[i])
		is.redirect(topics[i], topics[i+1])
	}

	for i := 0; i < 4; i++ {
		if res := is.resolve(topics[i]); res != topics[3] {
			t.Error("Unexpected resolve result:", topics[i], res)
			return
		}
	}

	// All redirects point directly to the surviving topic

	if res := fmt.Sprint(is.redirects); res != fmt.Sprintf("map[%v:%v %v:%v %v:%v]",
		topics[0], topics[3], topics[1], topics[3], topics[2], topics[3]) {
		t.Error("Unexpected redirects:", res)
		return
	}

	if res := fmt.Sprint(is.redirected); res != fmt.Sprintf("map[%v:[%v %v %v]]",
		topics[3], topics[0], topics[1], topics[2]) {
		t.Error("Unexpected reverse redirects:", res)
		return
	}

	// Merging the surviving topic moves all its redirects

	is.remove(topics[3])
	is.redirect(topics[3], topics[4])

	if res := fmt.Sprint(is.redirected); res != fmt.Sprintf("map[%v:[%v %v %v %v]]",
		topics[4], topics[0], topics[1], topics[2], topics[3]) {
		t.Error("Unexpected reverse redirects:", res)
		return
	}

	for _, id := range topics {
		if res := is.resolve(id); res != topics[4] {
			t.Error("Unexpected resolve result:", id, res)
			return
		}
	}

	// Removed topics resolve to nothing

	is.remove(topics[4])

	if res := is.resolve(topics[0]); res != data.NoID {
		t.Error("Unexpected resolve result:", res)
		return
	}
}
