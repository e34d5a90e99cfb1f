package main

import "github.com/andrescamacho/imperium/internal/adapters/cli"

func main() {
	cli.Execute()
}
