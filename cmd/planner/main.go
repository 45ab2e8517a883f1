// cmd/planner/main.go is the entry point for the planner CLI, kept thin
// per the teacher's cmd/lattice/main.go convention: parse nothing here,
// delegate straight to cobra.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
