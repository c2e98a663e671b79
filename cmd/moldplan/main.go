// Command moldplan is the entry point for the injection-molding monthly
// production planner: run a plan, serve the HTTP API, or validate a fleet
// catalog.
package main

import "github.com/moldplan/moldplan/internal/cli"

func main() {
	cli.Execute()
}
