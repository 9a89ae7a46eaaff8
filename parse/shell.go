package parse

import (
	"bytes"

	"mvdan.cc/sh/v3/syntax"

	autodoc "github.com/autodoc-ai/autodoc"
)

// shellFrontend parses POSIX/bash scripts. Shell has no classes or import
// statements; only top-level function declarations are extracted.
type shellFrontend struct {
	parser *syntax.Parser
}

func newShellFrontend() *shellFrontend {
	return &shellFrontend{
		parser: syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(true)),
	}
}

func (f *shellFrontend) Language() string     { return "shell" }
func (f *shellFrontend) Extensions() []string { return []string{".sh", ".bash"} }
func (f *shellFrontend) Style() CommentStyle  { return StyleHash }

func (f *shellFrontend) Parse(path string, src []byte) ([]autodoc.Declaration, error) {
	file, err := f.parser.Parse(bytes.NewReader(src), path)
	if err != nil {
		return nil, autodoc.E(autodoc.CodeInput, "parse", err)
	}

	var decls []autodoc.Declaration
	for _, stmt := range file.Stmts {
		fd, ok := stmt.Cmd.(*syntax.FuncDecl)
		if !ok {
			continue
		}
		start := int(fd.Pos().Offset())
		end := int(fd.End().Offset())
		decls = append(decls, autodoc.Declaration{
			Kind:      autodoc.DeclFunction,
			Name:      fd.Name.Value,
			StartByte: start,
			EndByte:   end,
			Indent:    int(fd.Pos().Col()) - 1,
			Body:      string(src[start:end]),
		})
	}
	return decls, nil
}
