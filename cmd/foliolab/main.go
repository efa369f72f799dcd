// cmd/foliolab/main.go
package main

import (
	cmd "github.com/mgearhart/foliolab/internal/commands"
)

// main starts the foliolab CLI application by delegating to the
// cobra root command defined in the foliolab package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
