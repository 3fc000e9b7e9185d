// Command pspstub hosts the SCP debug-stub session over a real serial
// transport: it owns process lifetime, configuration, and logging setup
// around the internal/session state machine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
