package main

import (
	"os"

	"github.com/msto63/nsms/cmd/nsms/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
