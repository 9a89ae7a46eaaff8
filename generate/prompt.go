package generate

import (
	"log/slog"
	"os"
	"strings"
	"text/template"

	autodoc "github.com/autodoc-ai/autodoc"
	defaults "github.com/autodoc-ai/autodoc/default"
	"github.com/autodoc-ai/autodoc/parse"
)

// commentData is passed to the comment prompt template.
type commentData struct {
	Language       string
	StyleHint      string
	ExampleCode    string
	ExampleComment string
}

// docData is passed to the markdown documentation prompt template.
type docData struct {
	ProjectName string
	Manifests   []string
}

// testImportData is passed to the test import prompt template.
type testImportData struct {
	CodeFile string
	TestFile string
}

var promptFuncs = template.FuncMap{
	"bullet": func(items []string) string {
		if len(items) == 0 {
			return ""
		}
		var sb strings.Builder
		for _, item := range items {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
		return strings.TrimSuffix(sb.String(), "\n")
	},
	"join": func(items []string, sep string) string {
		return strings.Join(items, sep)
	},
}

// Prompts holds the parsed prompt templates. Built-in templates can be
// overridden by dropping prompt_<name>.md files into the config dir.
type Prompts struct {
	comment    *template.Template
	doc        *template.Template
	test       *template.Template
	testImport *template.Template
}

// LoadPrompts parses the embedded templates plus any overrides. An
// override that fails to parse is logged and the default is kept.
func LoadPrompts() *Prompts {
	return &Prompts{
		comment:    loadTemplate("comment", defaults.CommentPrompt),
		doc:        loadTemplate("doc", defaults.DocPrompt),
		test:       loadTemplate("test", defaults.TestPrompt),
		testImport: loadTemplate("test_import", defaults.TestImportPrompt),
	}
}

func loadTemplate(name, fallback string) *template.Template {
	src := fallback
	path := autodoc.PromptPath(name)
	if data, err := os.ReadFile(path); err == nil {
		slog.Info("loaded custom prompt", "path", path)
		src = string(data)
	}

	t, err := template.New(name).Funcs(promptFuncs).Parse(src)
	if err != nil {
		slog.Warn("failed to parse prompt template, falling back to default", "name", name, "error", err)
		t = template.Must(template.New(name).Funcs(promptFuncs).Parse(fallback))
	}
	return t
}

// Comment renders the system prompt for a comment generation request.
func (p *Prompts) Comment(data commentData) string {
	return render(p.comment, defaults.CommentPrompt, data)
}

// Doc renders the system prompt for the markdown documentation request.
func (p *Prompts) Doc(data docData) string {
	return render(p.doc, defaults.DocPrompt, data)
}

// Test renders the system prompt for a per-method test request.
func (p *Prompts) Test() string {
	return render(p.test, defaults.TestPrompt, nil)
}

// TestImport renders the user message asking for the test file imports.
func (p *Prompts) TestImport(data testImportData) string {
	return render(p.testImport, defaults.TestImportPrompt, data)
}

func render(t *template.Template, fallback string, data any) string {
	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		slog.Warn("failed to execute prompt template, falling back to default", "name", t.Name(), "error", err)
		buf.Reset()
		t = template.Must(template.New(t.Name()).Funcs(promptFuncs).Parse(fallback))
		t.Execute(&buf, data)
	}
	return strings.TrimRight(buf.String(), " \t\n")
}

// styleHint phrases the expected comment format for the model.
func styleHint(style parse.CommentStyle, language string) string {
	switch style {
	case parse.StyleDocstring:
		return "a docstring between triple quotes, following Google docstring style guidelines"
	case parse.StyleHash:
		return "comment lines where every line starts with #"
	default:
		if language == "typescript" {
			return "a JSDoc block comment (/** ... */) with TSDoc tags"
		}
		return "a JSDoc block comment (/** ... */)"
	}
}
