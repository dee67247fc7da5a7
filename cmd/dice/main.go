package main

import "github.com/km-arc/go-dice/cmd/dice/internal/command"

func main() {
	command.Execute()
}
