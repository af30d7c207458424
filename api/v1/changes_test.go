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
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap"
)

func TestChangesConnectionErrors(t *testing.T) {
	queryURL := "http://localhost" + TESTPORT + EndpointChanges

	resetTopicMap(topicmap.DefaultFeatures())

	_, _, res := sendTestRequest(queryURL, "GET", nil)

	if res != `Bad Request
websocket: the client is not using the websocket protocol: 'upgrade' token not found in 'Connection' header` {
		t.Error("Unexpected response:", res)
		return
	}

	st, _, res := sendTestRequest(queryURL+"?kinds=topic.added,foo", "GET", nil)
	if st != "400 Bad Request" || res != "Unknown event kind: foo" {
		t.Error("Unexpected response:", st, res)
		return
	}

	oldChanges := api.Changes
	api.Changes = nil
	defer func() {
		api.Changes = oldChanges
	}()

	st, _, res = sendTestRequest(queryURL, "GET", nil)
	if st != "404 Not Found" || res != "Resource was not found" {
		t.Error("Unexpected response:", st, res)
		return
	}
}

func TestChanges(t *testing.T) {
	queryURL := "ws://localhost" + TESTPORT + EndpointChanges + "?kinds=topic.added,%20topic.removed"

	tm := resetTopicMap(topicmap.DefaultFeatures())

	c, _, err := websocket.DefaultDialer.Dial(queryURL, nil)
	if err != nil {
		t.Error("Could not open websocket:", err)
		return
	}
	defer c.Close()

	readMessage := func() map[string]interface{} {
		var msg map[string]interface{}

		_, raw, err := c.ReadMessage()
		if err != nil {
			t.Error("Could not read message:", err)
			return nil
		}

		json.Unmarshal(raw, &msg)

		return msg
	}

	msg := readMessage()
	if msg == nil || msg["type"] != "init_success" {
		t.Error("Unexpected message:", msg)
		return
	}

	subID := msg["subscription"]

	if res := msg["payload"].(map[string]interface{})["subscription"]; res != subID || api.Changes.Subscriptions() != 1 {
		t.Error("Unexpected message:", msg)
		return
	}

	// Only the requested event kinds are streamed

	alice, _ := tm.CreateTopicBySubjectIdentifier("http://example.com/alice")
	tm.RemoveTopic(alice, false)

	msg = readMessage()
	if res := formatJSONString(mustMarshal(msg["payload"])); msg["type"] != "event" || res != `
{
  "context": 1,
  "contextKind": "topicmap",
  "event": "topic.added",
  "new": 2,
  "old": null
}`[1:] {
		t.Error("Unexpected message:", msg)
		return
	}

	msg = readMessage()
	payload := msg["payload"].(map[string]interface{})

	if payload["event"] != "topic.removed" || payload["old"].(map[string]interface{})["id"] != float64(2) {
		t.Error("Unexpected message:", msg)
		return
	}

	// Invalid messages are answered with an error

	if err := c.WriteMessage(websocket.TextMessage, []byte("buu")); err != nil {
		t.Error("Could not send message:", err)
		return
	}

	msg = readMessage()
	if res := formatJSONString(mustMarshal(msg)); res != (`
{
  "payload": {
    "error": "invalid character 'b' looking for beginning of value"
  },
  "subscription": "` + subID.(string) + `",
  "type": "error"
}`)[1:] {
		t.Error("Unexpected message:", res)
		return
	}

	// Closing the stream removes the subscription

	if err := c.WriteMessage(websocket.TextMessage, []byte(`{"close": true}`)); err != nil {
		t.Error("Could not send message:", err)
		return
	}

	_, _, err = c.ReadMessage()
	if _, ok := err.(*websocket.CloseError); !ok {
		t.Error("Unexpected result:", err)
		return
	}

	for i := 0; i < 50 && api.Changes.Subscriptions() != 0; i++ {
		time.Sleep(10 * time.Millisecond)
	}

	if res := api.Changes.Subscriptions(); res != 0 {
		t.Error("Unexpected result:", res)
		return
	}
}

func mustMarshal(v interface{}) string {
	res, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(res)
}
