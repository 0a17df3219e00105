package main

import "github.com/kuranne/run/cmd"

func main() {
	cmd.Execute()
}
