package main

import (
	"fmt"
	"os"

	"github.com/hadi77ir/go-searchpage/cmd/searchpage/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
