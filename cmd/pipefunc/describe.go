package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print a pipeline in its f(...) | f(...) form",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPipeline(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Name(), p)
			return nil
		},
	}
	addFileFlag(cmd)
	return cmd
}
