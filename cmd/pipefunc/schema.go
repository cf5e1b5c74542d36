package main

import (
	"fmt"

	"github.com/davidroman0O/pipefunc/def"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of pipeline definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := def.Schema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
