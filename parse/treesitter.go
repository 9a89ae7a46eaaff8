package parse

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	autodoc "github.com/autodoc-ai/autodoc"
)

// nodeSpec names the grammar node types a tree-sitter frontend cares about.
// Grammars disagree on naming (python "function_definition" vs javascript
// "function_declaration"), so each frontend carries its own spec.
type nodeSpec struct {
	function  []string
	class     []string
	method    []string
	classBody []string
	imports   []string
	// wrappers are transparent containers whose children are walked in
	// place (decorators, export statements).
	wrappers []string
}

// treeFrontend parses one language via its tree-sitter grammar.
type treeFrontend struct {
	language string
	exts     []string
	style    CommentStyle
	lang     *sitter.Language
	spec     nodeSpec
	parser   *sitter.Parser
}

func newTreeFrontend(language string, exts []string, style CommentStyle, lang *sitter.Language, spec nodeSpec) *treeFrontend {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &treeFrontend{
		language: language,
		exts:     exts,
		style:    style,
		lang:     lang,
		spec:     spec,
		parser:   parser,
	}
}

func newPythonFrontend() *treeFrontend {
	return newTreeFrontend("python", []string{".py", ".pyw"}, StyleDocstring, python.GetLanguage(), nodeSpec{
		function:  []string{"function_definition"},
		class:     []string{"class_definition"},
		method:    []string{"function_definition"},
		classBody: []string{"block"},
		imports:   []string{"import_statement", "import_from_statement"},
		wrappers:  []string{"decorated_definition"},
	})
}

func newJavaScriptFrontend() *treeFrontend {
	return newTreeFrontend("javascript", []string{".js", ".mjs", ".cjs"}, StyleBlock, javascript.GetLanguage(), nodeSpec{
		function:  []string{"function_declaration", "generator_function_declaration"},
		class:     []string{"class_declaration"},
		method:    []string{"method_definition"},
		classBody: []string{"class_body"},
		imports:   []string{"import_statement"},
		wrappers:  []string{"export_statement"},
	})
}

func newTypeScriptFrontend() *treeFrontend {
	return newTreeFrontend("typescript", []string{".ts", ".tsx"}, StyleBlock, typescript.GetLanguage(), nodeSpec{
		function:  []string{"function_declaration", "generator_function_declaration"},
		class:     []string{"class_declaration"},
		method:    []string{"method_definition"},
		classBody: []string{"class_body"},
		imports:   []string{"import_statement"},
		wrappers:  []string{"export_statement"},
	})
}

func (f *treeFrontend) Language() string     { return f.language }
func (f *treeFrontend) Extensions() []string { return f.exts }
func (f *treeFrontend) Style() CommentStyle  { return f.style }

// Parse extracts imports, top-level functions, classes, and class methods.
// Nested functions are deliberately left alone.
func (f *treeFrontend) Parse(path string, src []byte) ([]autodoc.Declaration, error) {
	tree, err := f.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, autodoc.E(autodoc.CodeInput, "parse", err)
	}
	defer tree.Close()

	var decls []autodoc.Declaration
	f.walk(tree.RootNode(), src, &decls)
	return decls, nil
}

func (f *treeFrontend) walk(node *sitter.Node, src []byte, decls *[]autodoc.Declaration) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		typ := child.Type()
		switch {
		case contains(f.spec.wrappers, typ):
			f.walk(child, src, decls)
		case contains(f.spec.imports, typ):
			*decls = append(*decls, f.declFrom(child, src, autodoc.DeclImport, ""))
		case contains(f.spec.class, typ):
			cls := f.declFrom(child, src, autodoc.DeclClass, "")
			*decls = append(*decls, cls)
			if body := child.ChildByFieldName("body"); body != nil {
				f.walkClassBody(body, src, cls.Name, decls)
			}
		case contains(f.spec.function, typ):
			*decls = append(*decls, f.declFrom(child, src, autodoc.DeclFunction, ""))
		}
	}
}

func (f *treeFrontend) walkClassBody(body *sitter.Node, src []byte, className string, decls *[]autodoc.Declaration) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		typ := child.Type()
		switch {
		case contains(f.spec.wrappers, typ):
			f.walkClassBody(child, src, className, decls)
		case contains(f.spec.method, typ):
			*decls = append(*decls, f.declFrom(child, src, autodoc.DeclMethod, className))
		}
	}
}

func (f *treeFrontend) declFrom(node *sitter.Node, src []byte, kind autodoc.DeclKind, parent string) autodoc.Declaration {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = n.Content(src)
	}
	return autodoc.Declaration{
		Kind:      kind,
		Name:      name,
		Parent:    parent,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Indent:    int(node.StartPoint().Column),
		Body:      node.Content(src),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
