package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/odvcencio/sigil/pkg/codec"
	"github.com/odvcencio/sigil/pkg/config"
	"github.com/odvcencio/sigil/pkg/descriptor"
	"github.com/odvcencio/sigil/pkg/locate"
	"github.com/odvcencio/sigil/pkg/sig"
)

// newDescriber wires the configured search paths and marker. Paths given
// on the command line replace the configured ones.
func newDescriber(cfg *config.Config, logger *slog.Logger, paths []string) (*descriptor.Describer, error) {
	if len(paths) == 0 {
		paths = cfg.Paths
	}
	chain, err := locate.Open(paths)
	if err != nil {
		return nil, err
	}
	return descriptor.New(descriptor.Options{
		Locator: chain,
		Logger:  logger,
		Marker:  sig.TypeID(cfg.Marker),
	}), nil
}

func newDescribeCmd(g *globalOptions) *cobra.Command {
	var (
		format string
		paths  []string
	)
	cmd := &cobra.Command{
		Use:   "describe <type>...",
		Short: "Print the canonical constructor and fields of types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			d, err := newDescriber(cfg, logger, paths)
			if err != nil {
				return err
			}

			docs := make(codec.Docs, 0, len(args))
			for _, id := range args {
				desc, err := d.Describe(sig.TypeID(id))
				if err != nil {
					return err
				}
				docs = append(docs, codec.NewDoc(desc))
			}
			return codec.Render(cmd.OutOrStdout(), f, docs)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or cbor")
	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "signature directory or bundle (repeatable)")
	return cmd
}
