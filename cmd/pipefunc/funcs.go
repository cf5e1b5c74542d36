package main

import (
	"fmt"

	"github.com/davidroman0O/pipefunc/builtins"
	"github.com/spf13/cobra"
)

func newFuncsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funcs",
		Short: "List the builtin functions",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range builtins.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
