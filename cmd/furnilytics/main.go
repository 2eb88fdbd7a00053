// Package main implements the furnilytics CLI for querying the dataset
// catalog API from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/Furnilytics/Furnilytics-lib/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
