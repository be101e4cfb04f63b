// Command leakloader bulk-loads the ICIJ Offshore Leaks CSV dumps into a
// relational destination database.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
