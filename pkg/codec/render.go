package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json, yaml or cbor)", s)
}

// encMode uses core deterministic encoding so equal documents produce
// identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

type texter interface {
	text(b *strings.Builder)
}

// Render writes v in format f. v is a Docs or a TableDoc.
func Render(w io.Writer, f Format, v any) error {
	switch f {
	case FormatText, "":
		t, ok := v.(texter)
		if !ok {
			return fmt.Errorf("render: no text form for %T", v)
		}
		var b strings.Builder
		t.text(&b)
		_, err := io.WriteString(w, b.String())
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		data, err := encMode.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("render: unknown format %q", f)
}

// UnmarshalCBOR decodes CBOR produced by Render into v.
func UnmarshalCBOR(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}
