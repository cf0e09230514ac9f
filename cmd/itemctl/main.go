// Command itemctl is an operator tool for the item catalog. It validates and
// exports catalog snapshots and runs list and search queries offline.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
