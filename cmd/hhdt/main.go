package main

import (
	"github.com/Fuabioo/hhdt/internal/cli"
)

func main() {
	// Execute prints the error and exits with the mapped code itself.
	_ = cli.Execute()
}
