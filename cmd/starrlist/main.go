package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errEventUnhandled) {
			fmt.Printf("FATAL ERROR: %v\n", err)
		}
		os.Exit(1)
	}
}
