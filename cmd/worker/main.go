// Command worker runs the render-farm worker daemon: it pulls Tasks from a
// message broker, fetches and optimizes scene files, dispatches a renderer
// per frame, and uploads and reclaims the results.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
