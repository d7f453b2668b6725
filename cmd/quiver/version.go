package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quiver %s\n", Version)
		},
	}
}
