package main

import "github.com/notesai/notesai/cmd"

func main() {
	cmd.Execute()
}
