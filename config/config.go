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
Package config contains the global TopicDB configuration.

The configuration is a flat key-value map which is read from a JSON file.
Settings which are missing in the file are filled in from DefaultConfig.
*/
package config

import (
	"fmt"
	"path"
	"strconv"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/fileutil"
	"github.com/krotik/topicdb/topicmap"
)

// Global variables
// ================

/*
ProductVersion is the current version of TopicDB
*/
const ProductVersion = "1.0.0"

/*
DefaultConfigFile is the default config file which will be used to configure TopicDB
*/
var DefaultConfigFile = "topicdb.config.json"

/*
Known configuration options for TopicDB
*/
const (
	TopicMapName                        = "TopicMapName"
	BaseLocator                         = "BaseLocator"
	EnableHistory                       = "EnableHistory"
	EnableAutomaticMerging              = "EnableAutomaticMerging"
	EnableReificationDeletionConstraint = "EnableReificationDeletionConstraint"
	EnableMergeByTopicName              = "EnableMergeByTopicName"
	EnableReadOnly                      = "EnableReadOnly"
	WorkerCount                         = "WorkerCount"
	IndexCacheMaxSize                   = "IndexCacheMaxSize"
	IndexCacheMaxAgeSeconds             = "IndexCacheMaxAgeSeconds"
	HTTPHost                            = "HTTPHost"
	HTTPPort                            = "HTTPPort"
	EnableHTTPS                         = "EnableHTTPS"
	LocationHTTPS                       = "LocationHTTPS"
	HTTPSCertificate                    = "HTTPSCertificate"
	HTTPSKey                            = "HTTPSKey"
	LockFile                            = "LockFile"
	LogLevel                            = "LogLevel"
	LogFile                             = "LogFile"
	ServerLogHistory                    = "ServerLogHistory"
	EnableECALScripts                   = "EnableECALScripts"
	ECALScriptFolder                    = "ECALScriptFolder"
	ECALEntryScript                     = "ECALEntryScript"
	ECALLogLevel                        = "ECALLogLevel"
	ECALLogFile                         = "ECALLogFile"
	ECALWorkerCount                     = "ECALWorkerCount"
	EnableECALDebugServer               = "EnableECALDebugServer"
	ECALDebugServerHost                 = "ECALDebugServerHost"
	ECALDebugServerPort                 = "ECALDebugServerPort"
)

/*
DefaultConfig is the defaut configuration
*/
var DefaultConfig = map[string]interface{}{
	TopicMapName:                        "main",
	BaseLocator:                         "",
	EnableHistory:                       true,
	EnableAutomaticMerging:              true,
	EnableReificationDeletionConstraint: true,
	EnableMergeByTopicName:              false,
	EnableReadOnly:                      false,
	WorkerCount:                         topicmap.DefaultWorkerCount,
	IndexCacheMaxSize:                   1000,
	IndexCacheMaxAgeSeconds:             0,
	HTTPHost:                            "localhost",
	HTTPPort:                            "9090",
	EnableHTTPS:                         false,
	LocationHTTPS:                       "ssl",
	HTTPSCertificate:                    "cert.pem",
	HTTPSKey:                            "key.pem",
	LockFile:                            "topicdb.lck",
	LogLevel:                            "Info",
	LogFile:                             "",
	ServerLogHistory:                    100,
	EnableECALScripts:                   false,
	ECALScriptFolder:                    "scripts",
	ECALEntryScript:                     "main.ecal",
	ECALLogLevel:                        "Info",
	ECALLogFile:                         "",
	ECALWorkerCount:                     10,
	EnableECALDebugServer:               false,
	ECALDebugServerHost:                 "127.0.0.1",
	ECALDebugServerPort:                 "33274",
}

/*
Config is the actual config which is used
*/
var Config map[string]interface{}

/*
LoadConfigFile loads a given config file. If the config file does not exist it is
created with the default options.
*/
func LoadConfigFile(configfile string) error {
	var err error

	Config, err = fileutil.LoadConfig(configfile, DefaultConfig)

	return err
}

/*
LoadDefaultConfig loads the default configuration.
*/
func LoadDefaultConfig() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}

	Config = data
}

// Helper functions
// ================

/*
Str reads a config value as a string value.
*/
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

/*
Int reads a config value as an int value.
*/
func Int(key string) int64 {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
Bool reads a config value as a boolean value.
*/
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}

/*
ScriptPath returns a path relative to the ECAL script folder.
*/
func ScriptPath(parts ...string) string {
	return path.Join(append([]string{Str(ECALScriptFolder)}, parts...)...)
}

/*
Features returns the topic map features of the current configuration.
*/
func Features() topicmap.Features {
	return topicmap.Features{
		History:                       Bool(EnableHistory),
		AutomaticMerging:              Bool(EnableAutomaticMerging),
		ReificationDeletionConstraint: Bool(EnableReificationDeletionConstraint),
		MergeByTopicName:              Bool(EnableMergeByTopicName),
		ReadOnly:                      Bool(EnableReadOnly),
	}
}
