package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"assessml/internal/registry"
)

// errDegraded makes check exit non-zero when any capability failed to load.
var errDegraded = errors.New("registry degraded: one or more capabilities failed to load")

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Short:   "Load every model and print per-capability status as JSON",
		Example: "  assessml check --config configs/assessml.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, cmd.OutOrStdout())
		},
	}
}

func runCheck(cmd *cobra.Command, root *rootOptions, out io.Writer) error {
	cfg, err := resolveConfig(root)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	reg, err := registry.New(registry.LoadersFromConfig(cfg.Models, log), registry.Options{Logger: &log})
	if err != nil {
		return err
	}
	defer reg.Close()

	initErr := reg.Initialize(cmd.Context())
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reg.Status()); err != nil {
		return err
	}
	if reg.State() == registry.StateDegraded {
		return errors.Join(errDegraded, initErr)
	}
	return initErr
}
