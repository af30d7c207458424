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
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/krotik/common/fileutil"
	"github.com/krotik/ecal/cli/tool"
	ecalconfig "github.com/krotik/ecal/config"
	"github.com/krotik/ecal/util"
	"github.com/krotik/topicdb/config"
	"github.com/krotik/topicdb/ecal/tmfunc"
	"github.com/krotik/topicdb/topicmap"
)

/*
ScriptingInterpreter models a ECAL script interpreter instance.
*/
type ScriptingInterpreter struct {
	TM          *topicmap.Manager    // Topic map of the interpreter
	Interpreter *tool.CLIInterpreter // ECAL Interpreter object

	Dir       string // Root dir for interpreter
	EntryFile string // Entry file for the program
	LogLevel  string // Log level string (Debug, Info, Error)
	LogFile   string // Logfile (blank for stdout)

	RunDebugServer  bool   // Run a debug server
	DebugServerHost string // Debug server host
	DebugServerPort string // Debug server port
}

/*
NewScriptingInterpreter returns a new ECAL scripting interpreter.
*/
func NewScriptingInterpreter(scriptFolder string, tm *topicmap.Manager) *ScriptingInterpreter {
	return &ScriptingInterpreter{
		TM:              tm,
		Dir:             scriptFolder,
		EntryFile:       filepath.Join(scriptFolder, config.Str(config.ECALEntryScript)),
		LogLevel:        config.Str(config.ECALLogLevel),
		LogFile:         config.Str(config.ECALLogFile),
		RunDebugServer:  config.Bool(config.EnableECALDebugServer),
		DebugServerHost: config.Str(config.ECALDebugServerHost),
		DebugServerPort: config.Str(config.ECALDebugServerPort),
	}
}

/*
dummyEntryFile is a small valid ECAL which does not do anything. It is used
as the default entry file if no entry file exists.
*/
const dummyEntryFile = `0 # Write your ECAL code here
`

/*
Run runs the ECAL scripting interpreter.

After this function completes:
- EntryScript in config and all related scripts in the interpreter root dir have been executed
- ECAL Interpreter object is fully initialized
- A debug server might be running which can reload the entry script
- ECAL's event processor has been started
- Topic map changes are being forwarded to ECAL
*/
func (si *ScriptingInterpreter) Run() error {
	var err error

	// Ensure we have a dummy entry point

	if ok, _ := fileutil.PathExists(si.EntryFile); !ok {
		err = ioutil.WriteFile(si.EntryFile, []byte(dummyEntryFile), 0600)
	}

	if err == nil {
		i := tool.NewCLIInterpreter()
		si.Interpreter = i

		// Set worker count in ecal config

		ecalconfig.Config[ecalconfig.WorkerCount] = config.Config[config.ECALWorkerCount]

		i.Dir = &si.Dir
		i.LogFile = &si.LogFile
		i.LogLevel = &si.LogLevel

		i.EntryFile = si.EntryFile
		i.LoadPlugins = true

		i.CreateRuntimeProvider("topicdb-runtime")

		// Adding functions

		tmfunc.AddStdlibFunctions(si.TM)

		if si.RunDebugServer {
			di := tool.NewCLIDebugInterpreter(i)

			addr := fmt.Sprintf("%v:%v", si.DebugServerHost, si.DebugServerPort)
			di.DebugServerAddr = &addr
			di.RunDebugServer = &si.RunDebugServer
			falseFlag := false
			di.EchoDebugServer = &falseFlag
			di.Interactive = &falseFlag
			di.BreakOnStart = &falseFlag
			di.BreakOnError = &falseFlag

			err = di.Interpret()

		} else {

			err = i.Interpret(false)
		}

		// Topic map changes are now forwarded to ECAL via the eventbridge.

		si.TM.AddListener(&EventBridge{
			Processor: i.RuntimeProvider.Processor,
			Logger:    i.RuntimeProvider.Logger,
		})
	}

	// Include a traceback if possible

	if ss, ok := err.(util.TraceableRuntimeError); ok {
		err = fmt.Errorf("%v\n  %v", err.Error(), strings.Join(ss.GetTraceString(), "\n  "))
	}

	return err
}

/*
Stop stops forwarding topic map changes to ECAL.
*/
func (si *ScriptingInterpreter) Stop() {
	si.TM.RemoveListener((&EventBridge{}).Name())
}
