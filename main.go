// Package main is the entry point for the hoopmetrics CLI tool, which ingests
// basketball shot CSVs and builds comparable player shot profiles.
package main

import "github.com/pable/go-hoop-metrics/cmd"

func main() {
	cmd.Execute()
}
