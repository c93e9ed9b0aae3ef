// Package main is the entry point for the mutacore CLI.
package main

import "mutacore.dev/mutacore/cmd"

func main() {
	cmd.Execute()
}
