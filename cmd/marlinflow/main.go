// Package main provides the marlinflow CLI for converting chess training data
// into the Marlinflow text format.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
