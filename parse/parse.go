// Package parse extracts declarations from source files. Each supported
// language has a frontend that turns raw source into a flat list of
// declarations with exact byte ranges, which the generate package uses to
// position comments.
package parse

import (
	"fmt"
	"path/filepath"
	"strings"

	autodoc "github.com/autodoc-ai/autodoc"
)

// CommentStyle describes how generated comments attach to a declaration.
type CommentStyle int

const (
	// StyleDocstring inserts an indented docstring after the signature line.
	StyleDocstring CommentStyle = iota
	// StyleBlock inserts a block comment above the declaration.
	StyleBlock
	// StyleHash inserts "#" comment lines above the declaration.
	StyleHash
)

// Frontend parses one language family.
type Frontend interface {
	// Language is the canonical language name ("python", "shell", ...).
	Language() string
	// Extensions lists the file extensions this frontend handles, with dots.
	Extensions() []string
	// Style is the comment style for this language.
	Style() CommentStyle
	// Parse extracts declarations in source order.
	Parse(path string, src []byte) ([]autodoc.Declaration, error)
}

// frontendCtors lists the registered frontend constructors. ForPath
// constructs a fresh frontend per call: frontends carry parser state and
// are not safe to share across goroutines.
var frontendCtors = []func() Frontend{
	func() Frontend { return newPythonFrontend() },
	func() Frontend { return newJavaScriptFrontend() },
	func() Frontend { return newTypeScriptFrontend() },
	func() Frontend { return newShellFrontend() },
}

// ForPath returns a frontend for a file path based on its extension.
// Unknown extensions are an input error.
func ForPath(path string) (Frontend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, ctor := range frontendCtors {
		fe := ctor()
		for _, e := range fe.Extensions() {
			if e == ext {
				return fe, nil
			}
		}
	}
	return nil, autodoc.E(autodoc.CodeInput, "parse",
		fmt.Errorf("unsupported file extension %q", ext))
}

// Languages returns the names of all supported languages.
func Languages() []string {
	names := make([]string, len(frontendCtors))
	for i, ctor := range frontendCtors {
		names[i] = ctor().Language()
	}
	return names
}
