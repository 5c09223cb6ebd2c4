// Copyright 2017 uSwitch
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	rootParser := kingpin.CommandLine

	serveParser := rootParser.Command("serve", "run the credentials HTTP server")
	serveOpts := &serveCommand{}
	serveOpts.Bind(serveParser)

	resolveParser := rootParser.Command("resolve", "resolve credentials for a profile and print them")
	resolveOpts := &resolveCommand{}
	resolveOpts.Bind(resolveParser)

	healthParser := rootParser.Command("health", "check a running server")
	healthOpts := &healthCommand{}
	healthOpts.Bind(healthParser)

	switch kingpin.Parse() {
	case "serve":
		serveOpts.Run()
	case "resolve":
		resolveOpts.Run()
	case "health":
		healthOpts.Run()
	}
}
