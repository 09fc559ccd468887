package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/sigil/pkg/codec"
	"github.com/odvcencio/sigil/pkg/locate"
	"github.com/odvcencio/sigil/pkg/sig"
)

// compressionForPath picks the codec from a blob file's suffix.
func compressionForPath(path string) locate.Compression {
	for _, c := range []locate.Compression{locate.CompressionZstd, locate.CompressionLZ4} {
		if strings.HasSuffix(path, c.Ext()) {
			return c
		}
	}
	return locate.CompressionNone
}

func newDecodeCmd(g *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Dump the entry table of a signature blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			_, logger, err := g.load(cmd)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			c := compressionForPath(args[0])
			raw, err := locate.Decompress(c, data)
			if err != nil {
				return fmt.Errorf("decode: %s: %w", c, err)
			}
			table, err := sig.Decode(raw)
			if err != nil {
				return err
			}
			logger.Debug("decoded blob", "path", args[0], "bytes", len(raw), "entries", table.Len())
			return codec.Render(cmd.OutOrStdout(), f, codec.NewTableDoc(table))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or cbor")
	return cmd
}
