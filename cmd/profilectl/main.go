package main

import "github.com/talentboard/profiledir/internal/cli"

func main() {
	cli.Execute()
}
