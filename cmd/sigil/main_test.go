package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/sigil/pkg/codec"
	"github.com/odvcencio/sigil/pkg/locate"
)

const testSchema = `
package: com.example
classes:
  - name: Person
    case: true
    constructors:
      - params:
          - {name: name, type: String}
      - marked: true
        params:
          - {name: name, type: String}
          - {name: age, type: Int, default: true}
    accessors: [name, age]
`

// runSigil executes the root command with args and an absent config file.
func runSigil(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cfg := filepath.Join(t.TempDir(), "sigil.toml")
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.yaml")
	if err := os.WriteFile(path, []byte(testSchema), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCompileDirAndDescribe(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sigs")
	got, err := runSigil(t, "", "compile", writeSchema(t), "-o", out, "--compress", "zstd")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(got, "compiled 1 type(s)") {
		t.Fatalf("compile output = %q", got)
	}
	if _, err := os.Stat(locate.Path(out, "com.example.Person") + ".sig.zst"); err != nil {
		t.Fatalf("compressed blob missing: %v", err)
	}

	got, err = runSigil(t, "", "describe", "com.example.Person", "--path", out, "--format", "json")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	var docs []codec.Doc
	if err := json.Unmarshal([]byte(got), &docs); err != nil {
		t.Fatalf("describe output is not JSON: %v\n%s", err, got)
	}
	if len(docs) != 1 || docs[0].Primary != 1 || len(docs[0].Fields) != 2 {
		t.Fatalf("docs = %+v", docs)
	}
	if docs[0].Fields[1].Type != "scala.Int" || !docs[0].Fields[1].Default {
		t.Fatalf("age field = %+v", docs[0].Fields[1])
	}
}

func TestCompileBundleAndDescribe(t *testing.T) {
	out := filepath.Join(t.TempDir(), "people.sigb")
	if _, err := runSigil(t, "", "compile", writeSchema(t), "-o", out, "--bundle"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := runSigil(t, "", "describe", "com.example.Person", "-p", out)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(got, "com.example.Person (signature)") || !strings.Contains(got, "@primary") {
		t.Fatalf("describe output = %q", got)
	}

	if _, err := runSigil(t, "", "describe", "com.example.Missing", "-p", out); err == nil {
		t.Fatal("expected error describing an unknown type")
	}
	if _, err := runSigil(t, "", "compile", writeSchema(t), "-o", out, "--bundle", "--compress", "lz4"); err == nil {
		t.Fatal("expected error combining --bundle and --compress")
	}
}

func TestDecodeCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sigs")
	if _, err := runSigil(t, "", "compile", writeSchema(t), "-o", out, "--compress", "lz4"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	file := locate.Path(out, "com.example.Person") + ".sig.lz4"
	got, err := runSigil(t, "", "decode", file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{`"Person"`, `"<init>"`, "constructor"} {
		if !strings.Contains(got, want) {
			t.Fatalf("decode output missing %q:\n%s", want, got)
		}
	}

	bad := filepath.Join(t.TempDir(), "bad.sig")
	if err := os.WriteFile(bad, []byte{0x02, 0x01}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := runSigil(t, "", "decode", bad); err == nil {
		t.Fatal("expected decode error for truncated blob")
	}
}

func TestBindCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sigs")
	if _, err := runSigil(t, "", "compile", writeSchema(t), "-o", out); err != nil {
		t.Fatalf("compile: %v", err)
	}
	input := `{
		// comments are allowed
		"name": "Ada",
	}`
	got, err := runSigil(t, input, "bind", "com.example.Person", "-", "-p", out)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	var args []map[string]any
	if err := json.Unmarshal([]byte(got), &args); err != nil {
		t.Fatalf("bind output is not JSON: %v\n%s", err, got)
	}
	if len(args) != 2 || args[0]["value"] != "Ada" || args[1]["value"] != "<default>" {
		t.Fatalf("args = %v", args)
	}

	if _, err := runSigil(t, `{"age": 3}`, "bind", "com.example.Person", "-", "-p", out); err == nil {
		t.Fatal("expected missing field error")
	}
}

func TestVersionCmd(t *testing.T) {
	got, err := runSigil(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(got) != "sigil "+version {
		t.Fatalf("version output = %q", got)
	}
}

func TestBadConfigFails(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "sigil.toml")
	if err := os.WriteFile(cfg, []byte("[log]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "decode", cfg})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected config error")
	}
}
