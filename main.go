package main

import "github.com/bioreason/bioreason/cmd"

func main() {
	cmd.Execute()
}
