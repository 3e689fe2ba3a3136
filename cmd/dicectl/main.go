package main

import "github.com/mcoot/dicegame/internal/cli"

func main() {
	cli.Execute()
}
