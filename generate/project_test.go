package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGatherProjectPyproject(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "pyproject.toml", "[project]\nname = \"billing\"\ndescription = \"invoice service\"\n")

	ctx := gatherProject(dir)
	if ctx.Name != "billing" {
		t.Errorf("name = %q", ctx.Name)
	}
	if !strings.Contains(ctx.Manifests["pyproject.toml"], "billing") {
		t.Errorf("manifest summary = %q", ctx.Manifests["pyproject.toml"])
	}
	if !strings.Contains(ctx.Listing, "pyproject.toml") {
		t.Errorf("listing = %q", ctx.Listing)
	}
}

func TestGatherProjectPackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "package.json", `{"name": "webapp", "scripts": {"build": "vite build", "test": "vitest"}}`)

	ctx := gatherProject(dir)
	if ctx.Name != "webapp" {
		t.Errorf("name = %q", ctx.Name)
	}
	scripts := ctx.Manifests["package.json scripts"]
	if !strings.Contains(scripts, "build: vite build") {
		t.Errorf("scripts = %q", scripts)
	}
}

func TestGatherProjectGoMod(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "go.mod", "module example.com/acme/billing\n\ngo 1.22\n")

	ctx := gatherProject(dir)
	if ctx.Name != "billing" {
		t.Errorf("name = %q", ctx.Name)
	}
	summary := ctx.Manifests["go.mod"]
	if !strings.Contains(summary, "module example.com/acme/billing") || !strings.Contains(summary, "go 1.22") {
		t.Errorf("summary = %q", summary)
	}
}

func TestGatherProjectMakefile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "Makefile", "CC := gcc\n\nbuild: deps\n\tgo build ./...\n\ntest:\n\tgo test ./...\n\n.PHONY: build test\n")

	ctx := gatherProject(dir)
	targets := ctx.Manifests["Makefile targets"]
	if !strings.Contains(targets, "build") || !strings.Contains(targets, "test") {
		t.Errorf("targets = %q", targets)
	}
	if strings.Contains(targets, "CC") {
		t.Errorf("assignment leaked into targets: %q", targets)
	}
}

func TestGatherProjectEmptyDir(t *testing.T) {
	ctx := gatherProject(t.TempDir())
	if ctx.Name != "" {
		t.Errorf("expected empty name, got %q", ctx.Name)
	}
	if len(ctx.Manifests) != 0 {
		t.Errorf("expected no manifests, got %v", ctx.Manifests)
	}
}

func TestProjectCacheReuse(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "go.mod", "module example.com/x\n")

	pc := NewProjectCache()
	defer pc.Close()

	first := pc.Context(dir)
	second := pc.Context(dir)
	if first != second {
		t.Error("expected cached pointer on second lookup")
	}
}

func TestPromptLinesDeterministic(t *testing.T) {
	p := &ProjectContext{
		Listing: "a b c",
		Manifests: map[string]string{
			"go.mod":           "module x",
			"Makefile targets": "build",
		},
	}
	lines := p.promptLines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "files: a b c" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	// Labels are sorted
	if lines[1] != "Makefile targets: build" || lines[2] != "go.mod: module x" {
		t.Errorf("unexpected order: %v", lines[1:])
	}
}
