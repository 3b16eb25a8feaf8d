// Command mascara-echo is a minimal demo daemon built on top of the
// mascara engine: it registers a handful of ordinary Handler Table
// entries (echo, a readable-stream producer, status, shutdown) and
// drives them over a Unix domain socket, with a single-instance lock
// file guarding the daemon/client split.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
