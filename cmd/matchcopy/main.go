// Package main is the entry point for the matchcopy CLI.
package main

import "matchcopy/internal/cli"

func main() {
	cli.Execute()
}
