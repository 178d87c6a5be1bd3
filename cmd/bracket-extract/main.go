package main

import "github.com/pfrederiksen/bracket-extract/internal/cli"

func main() {
	cli.Execute()
}
