// Package main is the entry point of the bsql command.
package main

import (
	"os"

	"github.com/leapstack-labs/bettersql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
