/*
 * TopicDB
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"
)

const testconf = "testconfig"

func TestConfig(t *testing.T) {

	Config = nil

	ioutil.WriteFile(testconf, []byte(`{
    "EnableReadOnly": true,
    "EnableMergeByTopicName": true
}`), 0644)

	defer func() {
		if err := os.Remove(testconf); err != nil {
			fmt.Print("Could not remove test config file:", err.Error())
		}
	}()

	if err := LoadConfigFile(testconf); err != nil {
		t.Error(err)
		return
	}

	if res := Str("EnableReadOnly"); res != "true" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Bool("EnableReadOnly"); !res {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Int("WorkerCount"); fmt.Sprint(res) != fmt.Sprint(DefaultConfig[WorkerCount]) {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Features(); !res.ReadOnly || !res.MergeByTopicName || !res.History || !res.AutomaticMerging {
		t.Error("Unexpected result:", res)
		return
	}

	LoadDefaultConfig()

	if res := Str("EnableReadOnly"); res != "false" {
		t.Error("Unexpected result:", res)
		return
	}

	Config[HTTPPort] = "123"

	if res := Int("HTTPPort"); fmt.Sprint(res) == DefaultConfig[HTTPPort] {
		t.Error("Unexpected result:", res)
		return
	}

	if DefaultConfig[HTTPPort] != "9090" {
		t.Error("Default config should not be modified")
		return
	}

	if res := ScriptPath("123", "456"); res != "scripts/123/456" {
		t.Error("Unexpected result:", res)
		return
	}
}

func TestConfigErrors(t *testing.T) {
	LoadDefaultConfig()

	Config[WorkerCount] = "abc"

	defer func() {
		if r := recover(); r == nil {
			t.Error("Parsing an invalid number should cause a panic")
		}
		LoadDefaultConfig()
	}()

	Int(WorkerCount)
}
