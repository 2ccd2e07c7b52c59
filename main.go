package main

import "github.com/medialibre/mediatheque/cmd"

// execute is swappable for tests.
var execute = cmd.Execute

func main() {
	execute()
}
