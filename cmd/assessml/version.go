package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"assessml/internal/backend"
	"assessml/internal/httpapi"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "assessml %s (%s, llama=%t, swagger=%t)\n",
				version, runtime.Version(), backend.LlamaBuilt(), httpapi.SwaggerEnabled())
			return err
		},
	}
}
