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
TopicDB is an in-memory Topic Maps engine which implements the Topic Maps
Data Model. Topic maps can be queried and modified through a REST API and
ECAL scripts.

Features:

- Topics, associations, names, occurrences and variants with identity based merging.

- Optional revision history of all changes.

- Indexes for types, scopes, literals, identifiers and reification.

- Change notifications over websockets.
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/topicdb/config"
	"github.com/krotik/topicdb/server"
	"github.com/krotik/topicdb/topicmap"
	"github.com/krotik/topicdb/topicmap/data"
)

func main() {

	// Initialize the default command line parser

	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)

	// Define default usage message

	flag.Usage = func() {

		// Print usage for tool selection

		fmt.Println(fmt.Sprintf("Usage of %s <tool>", os.Args[0]))
		fmt.Println()
		fmt.Println("TopicDB topic maps engine")
		fmt.Println()
		fmt.Println("Available commands:")
		fmt.Println()
		fmt.Println("    server    Start TopicDB server")
		fmt.Println()
		fmt.Println(fmt.Sprintf("Use %s <command> -help for more information about a given command.", os.Args[0]))
		fmt.Println()
	}

	// Parse the command bit

	err := flag.CommandLine.Parse(os.Args[1:])

	if len(flag.Args()) > 0 {

		arg := flag.Args()[0]

		if arg == "server" {
			errorutil.AssertOk(config.LoadConfigFile(config.DefaultConfigFile))
			server.StartServerWithSingleOp(handleServerCommandLine)
		} else {
			flag.Usage()
		}

	} else if err == nil {

		flag.Usage()
	}
}

/*
handleServerCommandLine handles all command line options for the server
*/
func handleServerCommandLine(tm *topicmap.Manager) bool {

	exportTM := flag.String("export", "", "Export the topic map to a JSON file after initialization")

	noServ := flag.Bool("no-serv", false, "Do not start the server after initialization")

	showHelp := flag.Bool("help", false, "Show this help message")

	flag.Usage = func() {
		fmt.Println()
		fmt.Println(fmt.Sprintf("Usage of %s server [options]", os.Args[0]))
		fmt.Println()
		flag.PrintDefaults()
		fmt.Println()
	}

	flag.CommandLine.Parse(os.Args[2:])

	if *showHelp {
		flag.Usage()
		return true
	}

	if *exportTM != "" {

		fmt.Println("Exporting to:", *exportTM)

		if err := exportTopicMap(tm, *exportTM); err != nil {
			fmt.Println(err.Error())
			return true
		}
	}

	return *noServ
}

/*
exportTopicMap writes the topic map construct, all topics and all associations
as JSON into a file.
*/
func exportTopicMap(tm *topicmap.Manager, filename string) error {
	var err error
	var out []byte

	exportAll := func(ids []data.ID) ([]interface{}, error) {
		res := make([]interface{}, 0, len(ids))

		for _, id := range ids {
			e, err := tm.Export(id)
			if err != nil {
				return nil, err
			}
			res = append(res, e)
		}

		return res, nil
	}

	res := make(map[string]interface{})

	if res["topicmap"], err = tm.Export(tm.TopicMap()); err == nil {
		if res["topics"], err = exportAll(tm.Topics()); err == nil {
			if res["associations"], err = exportAll(tm.Associations()); err == nil {
				if out, err = json.MarshalIndent(res, "", "  "); err == nil {
					err = ioutil.WriteFile(filename, out, 0666)
				}
			}
		}
	}

	return err
}
