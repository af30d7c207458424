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
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/krotik/common/stringutil"
	"github.com/krotik/topicdb/api"
	"github.com/krotik/topicdb/topicmap/data"
)

/*
EndpointChanges is the changes endpoint URL (rooted). Handles everything under changes/...
*/
const EndpointChanges = api.APIRoot + APIv1 + "/changes/"

/*
changesUpgrader can upgrade normal requests to websocket communications
*/
var changesUpgrader = websocket.Upgrader{
	Subprotocols:    []string{"topicdb-changes"},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

/*
ChangesEndpointInst creates a new endpoint handler.
*/
func ChangesEndpointInst() api.RestEndpointHandler {
	return &changesEndpoint{}
}

/*
Handler object for change streams.
*/
type changesEndpoint struct {
	*api.DefaultEndpointHandler
}

/*
HandleGET streams change events of the topic map through a websocket.

GET /changes?kinds=<comma separated list of event kinds>

The client receives an init message with the subscription id followed by a
message for every change event. Sending {"close": true} ends the stream.
*/
func (ce *changesEndpoint) HandleGET(w http.ResponseWriter, r *http.Request, resources []string) {

	if api.Changes == nil {
		http.Error(w, "Resource was not found", http.StatusNotFound)
		return
	}

	var kinds []data.EventKind

	if k := r.URL.Query().Get("kinds"); k != "" {
		for _, name := range strings.Split(k, ",") {
			kind, ok := eventKindByName(strings.TrimSpace(name))
			if !ok {
				http.Error(w, "Unknown event kind: "+name, http.StatusBadRequest)
				return
			}
			kinds = append(kinds, kind)
		}
	}

	// Update the incomming connection to a websocket
	// If the upgrade fails then the client gets an HTTP error response.

	conn, err := changesUpgrader.Upgrade(w, r, nil)

	if err != nil {

		// We give details here on what went wrong

		w.Write([]byte(err.Error()))
		return
	}

	sub := api.Changes.Subscribe(kinds...)

	wc := newChangeConnection(sub.ID, conn)
	wc.Init()

	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			msg, fatal, err := wc.ReadData()

			if err != nil {
				if fatal {
					return
				}

				wc.WriteData("error", map[string]interface{}{
					"error": err.Error(),
				})

				continue
			}

			if val, ok := msg["close"]; ok && stringutil.IsTrueValue(fmt.Sprint(val)) {
				return
			}
		}
	}()

loop:
	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				break loop
			}
			wc.WriteData("event", event)

		case <-done:
			break loop
		}
	}

	api.Changes.Unsubscribe(sub)
	wc.Close("")
}

/*
SwaggerDefs is used to describe the endpoint in swagger.
*/
func (ce *changesEndpoint) SwaggerDefs(s map[string]interface{}) {
	// No swagger definitions for this endpoint as it only handles websocket requests
}

/*
eventKindByName returns an event kind by its name.
*/
func eventKindByName(name string) (data.EventKind, bool) {
	for _, k := range data.EventKinds() {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

/*
changeConnection models a single websocket connection of a change stream.

Websocket connections support one concurrent reader and one concurrent writer.
See: https://godoc.org/github.com/gorilla/websocket#hdr-Concurrency
*/
type changeConnection struct {
	subID  string
	conn   *websocket.Conn
	rmutex *sync.Mutex
	wmutex *sync.Mutex
}

/*
newChangeConnection creates a new changeConnection object.
*/
func newChangeConnection(subID string, c *websocket.Conn) *changeConnection {
	return &changeConnection{subID, c, &sync.Mutex{}, &sync.Mutex{}}
}

/*
Init sends the init message with the subscription id.
*/
func (wc *changeConnection) Init() {
	wc.WriteData("init_success", map[string]interface{}{
		"subscription": wc.subID,
	})
}

/*
ReadData reads data from the websocket connection. Returns if a read error
was fatal.
*/
func (wc *changeConnection) ReadData() (map[string]interface{}, bool, error) {
	var msg map[string]interface{}
	var fatal = true

	wc.rmutex.Lock()
	_, raw, err := wc.conn.ReadMessage()
	wc.rmutex.Unlock()

	if err == nil {
		fatal = false
		err = json.Unmarshal(raw, &msg)
	}

	return msg, fatal, err
}

/*
WriteData writes a message to the websocket.
*/
func (wc *changeConnection) WriteData(msgType string, payload map[string]interface{}) {
	wc.wmutex.Lock()
	defer wc.wmutex.Unlock()

	jsonData, _ := json.Marshal(map[string]interface{}{
		"subscription": wc.subID,
		"type":         msgType,
		"payload":      payload,
	})

	wc.conn.WriteMessage(websocket.TextMessage, jsonData)
}

/*
Close closes the websocket connection.
*/
func (wc *changeConnection) Close(msg string) {
	wc.wmutex.Lock()
	defer wc.wmutex.Unlock()

	wc.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(
			websocket.CloseNormalClosure, msg), time.Now().Add(10*time.Second))

	wc.conn.Close()
}
