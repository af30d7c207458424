/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package ecal

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/fileutil"
	"github.com/krotik/topicdb/config"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

const testScriptDir = "testscripts"

func TestMain(m *testing.M) {
	flag.Parse()

	defer func() {
		if res, _ := fileutil.PathExists(testScriptDir); res {
			if err := os.RemoveAll(testScriptDir); err != nil {
				fmt.Print("Could not remove test directory:", err.Error())
			}
		}
	}()

	if res, _ := fileutil.PathExists(testScriptDir); res {
		if err := os.RemoveAll(testScriptDir); err != nil {
			fmt.Print("Could not remove test directory:", err.Error())
		}
	}

	ensurePath(testScriptDir)

	topicmap.LogDebug = topicmap.LogNull

	config.LoadDefaultConfig()

	config.Config[config.EnableECALScripts] = true
	config.Config[config.ECALScriptFolder] = testScriptDir
	config.Config[config.ECALLogFile] = filepath.Join(testScriptDir, "interpreter.log")

	// Run the tests

	m.Run()
}

/*
ensurePath ensures that a given relative path exists.
*/
func ensurePath(path string) {
	if res, _ := fileutil.PathExists(path); !res {
		if err := os.Mkdir(path, 0770); err != nil {
			fmt.Print("Could not create directory:", err.Error())
			return
		}
	}
}

func writeScript(content string) {
	filename := filepath.Join(testScriptDir, config.Str(config.ECALEntryScript))
	err := ioutil.WriteFile(
		filename,
		[]byte(content), 0600)
	errorutil.AssertOk(err)
	os.Remove(config.Str(config.ECALLogFile))
}

func checkLog(expected string) error {
	content, err := ioutil.ReadFile(config.Str(config.ECALLogFile))

	if err == nil {
		if logtext := string(content); logtext != expected {
			err = fmt.Errorf("Unexpected log text:\n%v", logtext)
		}
	}

	return err
}

/*
waitLog waits until the log contains the expected text. Events are processed
asynchronously by ECAL.
*/
func waitLog(expected string) error {
	var err error

	for i := 0; i < 50; i++ {
		if err = checkLog(expected); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	return err
}

func newTestManager() *topicmap.Manager {
	return topicmap.NewManager("test", "http://example.com/tm/", topicmap.DefaultFeatures())
}

func TestInterpreter(t *testing.T) {
	tm := newTestManager()
	defer tm.Close()

	ds := NewScriptingInterpreter(testScriptDir, tm)
	defer ds.Stop()

	// Test normal log output

	writeScript(`
log("test insert")
`)

	if err := ds.Run(); err != nil {
		t.Error("Unexpected result:", err)
		return
	}

	if err := checkLog(`test insert
`); err != nil {
		t.Error(err)
	}

	// Test stack trace

	writeScript(`
raise("some error")
`)

	if err := ds.Run(); err == nil || err.Error() != `ECAL error in topicdb-runtime (testscripts/main.ecal): some error () (Line:2 Pos:1)
  raise("some error") (testscripts/main.ecal:2)` {
		t.Error("Unexpected result:", err)
		return
	}

	// Test topic map functions

	writeScript(`
t := tm.createTopic("http://example.com/psi/ecal")
tm.addName(t, "ECAL")
log("topic: ", t)
`)

	if err := ds.Run(); err != nil {
		t.Error("Unexpected result:", err)
		return
	}

	if err := checkLog(`topic: 2
`); err != nil {
		t.Error(err)
	}

	topic := tm.TopicBySubjectIdentifier("http://example.com/psi/ecal")

	if names := tm.Names(topic); topic != 2 || len(names) != 1 || tm.Value(names[0]) != "ECAL" {
		t.Error("Unexpected result:", topic, names)
		return
	}
}

func TestEvents(t *testing.T) {
	tm := newTestManager()
	defer tm.Close()

	ds := NewScriptingInterpreter(testScriptDir, tm)
	defer ds.Stop()

	writeScript(`
sink namesink
  kindmatch [ "tm.value.modified" ],
{
  if event.state.contextKind == "name" {
    log("Name ", event.state.context, ": ", event.state.new.value)
  }
}

sink removesink
  kindmatch [ "tm.topic.removed" ],
{
  log("Removed topic ", event.state.old.id)
}
`)

	if err := ds.Run(); err != nil {
		t.Error("Unexpected result:", err)
		return
	}

	if res := fmt.Sprint(tm.Listeners()); res != "[ecal.eventbridge]" {
		t.Error("Unexpected result:", res)
		return
	}

	topic, _ := tm.CreateTopic()
	tm.CreateName(topic, data.NoID, "Alice", nil)

	if err := waitLog(`Name 4: Alice
`); err != nil {
		t.Error(err)
		return
	}

	tm.RemoveTopic(topic, false)

	if err := waitLog(`Name 4: Alice
Removed topic 2
`); err != nil {
		t.Error(err)
		return
	}

	ds.Stop()

	if res := fmt.Sprint(tm.Listeners()); res != "[]" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestEventName(t *testing.T) {
	if res := EventName(data.EventTopicsMerged); res != "tm.topics.merged" {
		t.Error("Unexpected result:", res)
		return
	}
}
