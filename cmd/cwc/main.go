package main

import "github.com/mcoot/codingworldcup/internal/cli"

func main() {
	cli.Execute()
}
