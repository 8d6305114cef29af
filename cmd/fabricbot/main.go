// Fabric Bot keeps a Discord server tidy: it answers a few commands, removes
// the exchange after a delay, and provisions its own webhook in configured
// channels.
package main

import (
	"fmt"
	"os"

	"github.com/fabricbot/fabricbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
