package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/odvcencio/sigil/pkg/bind"
	"github.com/odvcencio/sigil/pkg/sig"
)

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newBindCmd(g *globalOptions) *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "bind <type> <input.json>",
		Short: "Order JSON input as constructor arguments",
		Long: "Reads a JSON or JSONC object (matched by field name) or array (matched by\n" +
			"position) and prints the arguments of the type's canonical constructor.\n" +
			"Use - to read standard input.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			d, err := newDescriber(cfg, logger, paths)
			if err != nil {
				return err
			}
			desc, err := d.Describe(sig.TypeID(args[0]))
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[1])
			if err != nil {
				return fmt.Errorf("bind: %w", err)
			}
			dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
			dec.UseNumber()
			var input any
			if err := dec.Decode(&input); err != nil {
				return fmt.Errorf("bind: parse %s: %w", args[1], err)
			}

			ordered, err := bind.Arguments(desc, input)
			if err != nil {
				return err
			}
			out := make([]map[string]any, len(ordered))
			for i, f := range desc.Fields {
				out[i] = map[string]any{"name": f.Name, "type": f.Type.String(), "value": ordered[i]}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "signature directory or bundle (repeatable)")
	return cmd
}
