package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/sigil/pkg/config"
)

const version = "0.1.0-dev"

// globalOptions carries the persistent flags shared by every command.
type globalOptions struct {
	configPath string
}

func (g *globalOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(cmd.ErrOrStderr()), nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "sigil",
		Short:         "Recover constructor signatures from compiled type metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to sigil.toml")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newDescribeCmd(opts))
	root.AddCommand(newDecodeCmd(opts))
	root.AddCommand(newCompileCmd(opts))
	root.AddCommand(newBindCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sigil "+version)
		},
	}
}
