// Package main provides the olist command.
package main

import (
	"os"

	"github.com/leapstack-labs/olist/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
