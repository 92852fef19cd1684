package main

import "github.com/bryanchriswhite/regionshot/cmd/regionshot/commands"

func main() {
	commands.Execute()
}
