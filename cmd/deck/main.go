package main

import "agentrpg/cmd/deck/root"

func main() {
	root.Execute()
}
