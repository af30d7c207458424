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
Package server contains the code for the TopicDB server.
*/
package server

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/krotik/common/cryptutil"
	"github.com/krotik/common/datautil"
	"github.com/krotik/common/fileutil"
	"github.com/krotik/common/httputil"
	"github.com/krotik/common/lockutil"
	"github.com/krotik/common/logutil"
	"github.com/krotik/topicdb/api"
	v1 "github.com/krotik/topicdb/api/v1"
	"github.com/krotik/topicdb/config"
	"github.com/krotik/topicdb/ecal"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
	"github.com/krotik/topicdb/topicmap/index"
)

/*
Using custom consolelogger type so we can test log.Fatal calls with unit tests. Overwrite
these if the server should not call os.Exit on a fatal error.
*/
type consolelogger func(v ...interface{})

var fatal = consolelogger(log.Fatal)
var print = consolelogger(log.Print)

/*
Base path for all file (used by unit tests)
*/
var basepath = ""

/*
LogScope is the logging scope of the topic map engine.
*/
const LogScope = "topicdb"

/*
StartServer runs the TopicDB server. The server uses config.Config for all its configuration
parameters.
*/
func StartServer() {
	StartServerWithSingleOp(nil)
}

/*
StartServerWithSingleOp runs the TopicDB server. If the singleOperation function is
not nil then the server executes the function and exists if the function returns true.
*/
func StartServerWithSingleOp(singleOperation func(*topicmap.Manager) bool) {
	var err error
	var base data.Locator

	print(fmt.Sprintf("TopicDB %v", config.ProductVersion))

	// Ensure we have a configuration - use the default configuration if nothing was set

	if config.Config == nil {
		config.LoadDefaultConfig()
	}

	// Setup logging of the topic map engine

	logCloser, err := setupLogging()
	if err != nil {
		fatal("Failed to setup logging:", err)
		return
	}
	defer logCloser()

	// Configure the index caches

	index.CacheMaxSize = uint64(config.Int(config.IndexCacheMaxSize))
	index.CacheMaxAge = config.Int(config.IndexCacheMaxAgeSeconds)

	// Create the topic map

	if b := config.Str(config.BaseLocator); b != "" {
		if base, err = data.NewLocator(b); err != nil {
			fatal("Invalid base locator:", err)
			return
		}
	}

	print("Creating topic map ", config.Str(config.TopicMapName))

	tm := topicmap.NewManager(config.Str(config.TopicMapName), base, config.Features())
	tm.SetWorkerCount(int(config.Int(config.WorkerCount)))

	defer func() {
		print("Closing topic map")
		if err := tm.Close(); err != nil {
			fatal(err)
		}
	}()

	// Create and open the indexes

	ix := index.NewIndexes(tm)

	if err = ix.Open(); err != nil {
		fatal("Failed to open indexes:", err)
		return
	}

	defer ix.Close()

	// Forward topic map changes to change feed subscribers

	changes := api.NewChangeFeed()
	tm.AddListener(changes)
	defer tm.RemoveListener(changes.Name())

	// Check if we should only execute a single operation

	if singleOperation != nil {
		if singleOperation(tm) {
			return
		}
	}

	// Start the scripting interpreter

	var si *ecal.ScriptingInterpreter

	if config.Bool(config.EnableECALScripts) {
		scriptFolder := filepath.Join(basepath, config.Str(config.ECALScriptFolder))

		print("Loading ECAL scripts in ", scriptFolder)

		ensurePath(scriptFolder)

		si = ecal.NewScriptingInterpreter(scriptFolder, tm)

		if err = si.Run(); err != nil {
			fatal("Failed to start ECAL scripting interpreter:", err)
			return
		}

		defer si.Stop()
	}

	// Setting other API parameters

	api.APIHost = config.Str(config.HTTPHost) + ":" + config.Str(config.HTTPPort)
	api.APISchemes = []string{"http"}

	api.TM = tm
	api.IX = ix
	api.SI = si
	api.Changes = changes

	defer func() {
		api.TM = nil
		api.IX = nil
		api.SI = nil
		api.Changes = nil
	}()

	// Register public REST endpoints

	api.RegisterRestEndpoints(api.GeneralEndpointMap)
	api.RegisterRestEndpoints(v1.V1EndpointMap)

	// Start the HTTP(S) server and enable REST API

	hs := &httputil.HTTPServer{}

	var wg sync.WaitGroup
	wg.Add(1)

	port := config.Str(config.HTTPPort)

	if config.Bool(config.EnableHTTPS) {
		sslDir := filepath.Join(basepath, config.Str(config.LocationHTTPS))
		certFile := config.Str(config.HTTPSCertificate)
		keyFile := config.Str(config.HTTPSKey)

		api.APISchemes = []string{"https"}

		if err = ensureCertificate(sslDir, certFile, keyFile); err != nil {
			fatal("Failed to generate ssl key and certificate:", err)
			return
		}

		print("Starting HTTPS server on: ", api.APIHost)

		go hs.RunHTTPSServer(sslDir, certFile, keyFile, ":"+port, &wg)

	} else {

		print("Starting HTTP server on: ", api.APIHost)

		go hs.RunHTTPServer(":"+port, &wg)
	}

	// Wait until the server has started

	wg.Wait()

	if hs.LastError != nil {
		fatal(hs.LastError)
		return
	}

	topicmap.LogInfo(fmt.Sprintf("Serving topic map %v on %v", tm.Name(), api.APIHost))

	// Create a lockfile so the server can be shut down

	lf := lockutil.NewLockFile(basepath+config.Str(config.LockFile), time.Duration(2)*time.Second)

	lf.Start()

	go func() {

		// Check if the lockfile watcher is running and
		// call shutdown once it has finished

		for lf.WatcherRunning() {
			time.Sleep(time.Duration(1) * time.Second)
		}

		print("Lockfile was modified")

		hs.Shutdown()
	}()

	// Add to the wait group so we can wait for the shutdown

	wg.Add(1)

	print("Waiting for shutdown")
	wg.Wait()

	print("Shutting down")

	os.Remove(basepath + config.Str(config.LockFile))
}

/*
setupLogging wires the loggers of the topic map engine to the configured log
sinks. The recent log is kept in api.ServerLog. The returned function releases
any opened log file.
*/
func setupLogging() (func(), error) {
	closer := func() {}

	level := logutil.StringToLoglevel(config.Str(config.LogLevel))
	if level == "" {
		return closer, fmt.Errorf("Unknown log level: %v", config.Str(config.LogLevel))
	}

	var out io.Writer = os.Stderr
	formatter := logutil.ConsoleFormatter()

	if logFile := config.Str(config.LogFile); logFile != "" {
		f, err := os.OpenFile(filepath.Join(basepath, logFile),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0660)
		if err != nil {
			return closer, err
		}

		out = f
		formatter = logutil.SimpleFormatter()
		closer = func() { f.Close() }
	}

	api.ServerLog = datautil.NewRingBuffer(int(config.Int(config.ServerLogHistory)))

	logutil.ClearLogSinks()

	logger := logutil.GetLogger(LogScope)
	logger.AddLogSink(level, formatter, out)
	logger.AddLogSink(level, logutil.SimpleFormatter(), &ringBufferWriter{api.ServerLog})

	topicmap.LogInfo = logger.Info
	topicmap.LogDebug = logger.Debug

	return closer, nil
}

/*
ringBufferWriter writes log lines into a ring buffer.
*/
type ringBufferWriter struct {
	rb *datautil.RingBuffer
}

/*
Write adds the given log output to the ring buffer.
*/
func (w *ringBufferWriter) Write(p []byte) (int, error) {
	w.rb.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

/*
ensureCertificate creates a self signed key and certificate if they do not exist.
*/
func ensureCertificate(sslDir string, certFile string, keyFile string) error {
	ensurePath(sslDir)

	certExists, _ := fileutil.PathExists(filepath.Join(sslDir, certFile))
	keyExists, _ := fileutil.PathExists(filepath.Join(sslDir, keyFile))

	if certExists && keyExists {
		return nil
	}

	print("Creating key (", keyFile, ") and certificate (", certFile, ") in: ", sslDir)

	return cryptutil.GenCert(sslDir, certFile, keyFile, "localhost", "",
		365*24*time.Hour, false, 4096, "")
}

/*
ensurePath ensures that a given relative path exists.
*/
func ensurePath(path string) {
	if res, _ := fileutil.PathExists(path); !res {
		if err := os.Mkdir(path, 0770); err != nil {
			fatal("Could not create directory:", err.Error())
			return
		}
	}
}
