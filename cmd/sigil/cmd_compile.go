package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/sigil/pkg/bundle"
	"github.com/odvcencio/sigil/pkg/locate"
	"github.com/odvcencio/sigil/pkg/schema"
)

func newCompileCmd(g *globalOptions) *cobra.Command {
	var (
		out         string
		asBundle    bool
		compression string
	)
	cmd := &cobra.Command{
		Use:   "compile <schema.yaml>",
		Short: "Compile a schema into signature blobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("compile: --out is required")
			}
			c, err := locate.ParseCompression(compression)
			if err != nil {
				return err
			}
			if asBundle && c != locate.CompressionNone {
				return fmt.Errorf("compile: --compress applies to directory output only")
			}
			_, logger, err := g.load(cmd)
			if err != nil {
				return err
			}

			doc, err := schema.ParseFile(args[0])
			if err != nil {
				return err
			}
			blobs, err := doc.Compile()
			if err != nil {
				return err
			}
			ids := doc.IDs()

			w := cmd.OutOrStdout()
			if asBundle {
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return fmt.Errorf("compile: %w", err)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("compile: %w", err)
				}
				buf := bufio.NewWriter(f)
				bw, err := bundle.NewWriter(buf, uint32(len(ids)))
				if err != nil {
					f.Close()
					return err
				}
				for _, id := range ids {
					if err := bw.WriteEntry(id, blobs[id]); err != nil {
						f.Close()
						return err
					}
				}
				sum, err := bw.Finish()
				if err != nil {
					f.Close()
					return err
				}
				if err := buf.Flush(); err != nil {
					f.Close()
					return fmt.Errorf("compile: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("compile: %w", err)
				}
				logger.Debug("wrote bundle", "path", out, "types", len(ids), "checksum", sum)
				fmt.Fprintf(w, "compiled %d type(s) into %s (%s)\n", len(ids), out, sum[:12])
				return nil
			}

			for _, id := range ids {
				data, err := locate.Compress(c, blobs[id])
				if err != nil {
					return fmt.Errorf("compile %s: %w", id, err)
				}
				path := locate.Path(out, id) + c.Ext()
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return fmt.Errorf("compile %s: %w", id, err)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("compile %s: %w", id, err)
				}
				logger.Debug("wrote blob", "type", string(id), "path", path, "bytes", len(data))
			}
			fmt.Fprintf(w, "compiled %d type(s) into %s\n", len(ids), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory, or bundle file with --bundle")
	cmd.Flags().BoolVar(&asBundle, "bundle", false, "write a single bundle file")
	cmd.Flags().StringVar(&compression, "compress", "none", "blob compression for directory output: none, zstd or lz4")
	return cmd
}
