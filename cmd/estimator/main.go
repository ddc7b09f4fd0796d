package main

import (
	"fmt"
	"os"

	"estimator/cmd/estimator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
