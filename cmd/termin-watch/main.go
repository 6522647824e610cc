package main

import "github.com/pfrederiksen/termin-watch/internal/cli"

func main() {
	cli.Execute()
}
