package main

import "github.com/mcoot/ranktracker/internal/cli"

func main() {
	cli.Execute()
}
