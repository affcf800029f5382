package main

import "github.com/NoahYB/drum-machine/cmd"

func main() {
	cmd.Execute()
}
