package parse

import (
	"strings"
	"testing"

	autodoc "github.com/autodoc-ai/autodoc"
)

const shellFixture = `#!/usr/bin/env bash
set -euo pipefail

greet() {
  echo "hi $1"
}

function deploy {
  scp app host:/srv/
}

echo "done"
`

func TestShellParse(t *testing.T) {
	fe := newShellFrontend()
	decls, err := fe.Parse("deploy.sh", []byte(shellFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}

	if decls[0].Name != "greet" {
		t.Errorf("expected greet, got %q", decls[0].Name)
	}
	if decls[0].Kind != autodoc.DeclFunction {
		t.Errorf("unexpected kind %s", decls[0].Kind)
	}
	if !strings.HasPrefix(decls[0].Body, "greet()") {
		t.Errorf("unexpected body %q", decls[0].Body)
	}
	if got := shellFixture[decls[0].StartByte:decls[0].EndByte]; got != decls[0].Body {
		t.Error("byte range does not match body")
	}
	if decls[0].Indent != 0 {
		t.Errorf("unexpected indent %d", decls[0].Indent)
	}

	if decls[1].Name != "deploy" {
		t.Errorf("expected deploy, got %q", decls[1].Name)
	}
}

func TestShellParseNoFunctions(t *testing.T) {
	fe := newShellFrontend()
	decls, err := fe.Parse("plain.sh", []byte("echo hello\nls -la\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 0 {
		t.Errorf("expected no declarations, got %d", len(decls))
	}
}

func TestShellParseSyntaxError(t *testing.T) {
	fe := newShellFrontend()
	_, err := fe.Parse("broken.sh", []byte("if then fi ((\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if autodoc.ErrCode(err) != autodoc.CodeInput {
		t.Errorf("expected input error code, got %q", autodoc.ErrCode(err))
	}
}
