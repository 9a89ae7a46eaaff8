// Package generate runs the documentation pipeline: it parses a source
// file, asks the configured model for a comment per declaration, merges
// the comments back into the source, and writes the commented copy plus
// the optional markdown documentation and test artifacts.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio"

	autodoc "github.com/autodoc-ai/autodoc"
	"github.com/autodoc-ai/autodoc/corpus"
	"github.com/autodoc-ai/autodoc/parse"
)

// Engine orchestrates one pipeline run per Document call. It is safe to
// reuse for many files; the project context cache persists across runs.
type Engine struct {
	cfg       *autodoc.Config
	generator *Generator
	prompts   *Prompts
	exemplars *corpus.Index
	projects  *ProjectCache
}

// NewEngine creates an engine from config. When an embedding endpoint is
// configured the exemplar index is built eagerly; a failed build degrades
// to fixed exemplars and is only logged.
func NewEngine(cfg *autodoc.Config) *Engine {
	if cfg == nil {
		cfg = autodoc.DefaultConfig()
	}

	gen := NewGenerator(
		autodoc.ResolveGenerationBaseURL(cfg),
		autodoc.ResolveGenerationAPIKey(cfg),
		autodoc.ResolveGenerationModel(cfg),
		cfg.Generation.MaxTokens,
		cfg.Generation.Temperature,
		time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
	)

	exemplars := corpus.Builtin()
	var index *corpus.Index
	if autodoc.EmbeddingEnabled(cfg) {
		embedder := corpus.NewEmbedder(
			autodoc.ResolveEmbeddingBaseURL(cfg),
			autodoc.ResolveEmbeddingAPIKey(cfg),
			autodoc.ResolveEmbeddingModel(cfg),
		)
		index = corpus.NewIndex(embedder, exemplars, autodoc.EmbeddingCachePath())
		if err := index.Build(context.Background()); err != nil {
			slog.Warn("exemplar index build failed, using fixed exemplars", "error", err)
			index = corpus.NewIndex(nil, exemplars, "")
		}
	} else {
		index = corpus.NewIndex(nil, exemplars, "")
	}

	return &Engine{
		cfg:       cfg,
		generator: gen,
		prompts:   LoadPrompts(),
		exemplars: index,
		projects:  NewProjectCache(),
	}
}

// Close releases resources held by the engine.
func (e *Engine) Close() {
	if e.projects != nil {
		e.projects.Close()
	}
}

// Document runs the full pipeline for one source file:
// read, parse, generate comments, integrate, write. The input file is
// never modified; artifacts are written next to it (or under the
// configured output dir). Any inference or write failure aborts the run
// with nothing further written. Artifacts land in order (commented
// source, then docs, then tests), so a failure in a later stage leaves
// the earlier artifacts in place; nothing is written before the first
// stage completes.
func (e *Engine) Document(ctx context.Context, path string) (*autodoc.Result, error) {
	doc, err := autodoc.ReadDocument(path)
	if err != nil {
		return nil, err
	}

	fe, err := parse.ForPath(path)
	if err != nil {
		return nil, err
	}

	decls, err := fe.Parse(path, doc.Source)
	if err != nil {
		return nil, err
	}
	slog.Debug("parsed source", "path", path, "language", fe.Language(), "declarations", len(decls))

	res := &autodoc.Result{SourcePath: path}
	dir := filepath.Dir(path)
	file := filepath.Base(path)
	outBase := e.outputDir(dir)

	// Generate one comment per declaration. A single failed call aborts
	// the run before anything touches the disk.
	style := fe.Style()
	var pairs []commentPair
	for _, d := range decls {
		if d.Kind == autodoc.DeclImport {
			continue
		}
		system := e.commentPrompt(ctx, fe, d)
		slog.Debug("requesting comment", "kind", d.Kind, "name", d.Name)
		out, err := e.generator.Generate(ctx, system, d.Body)
		if err != nil {
			return nil, err
		}
		comment := formatComment(out, style)
		if comment == "" {
			slog.Debug("empty comment, skipping", "name", d.Name)
			continue
		}
		pairs = append(pairs, commentPair{decl: d, comment: comment, style: style})
		res.Documented++
	}

	commented := insertComments(doc.Source, pairs)
	commentPath := filepath.Join(outBase, "comment_"+file)
	if err := writeArtifact(commentPath, commented); err != nil {
		return nil, err
	}
	res.CommentPath = commentPath
	slog.Info("wrote commented source", "path", commentPath, "documented", res.Documented)

	if autodoc.DocsEnabled(e.cfg) {
		docPath, err := e.writeMarkdownDoc(ctx, outBase, dir, file, commented)
		if err != nil {
			return nil, err
		}
		res.DocPath = docPath
		slog.Info("wrote documentation", "path", docPath)
	}

	if autodoc.TestsEnabled(e.cfg) {
		testPath, err := e.writeTests(ctx, outBase, path, file, fe.Language(), doc.Source, decls)
		if err != nil {
			return nil, err
		}
		if testPath != "" {
			res.TestPath = testPath
			slog.Info("wrote tests", "path", testPath)
		}
	}

	return res, nil
}

// commentPrompt renders the comment system prompt with the exemplar
// nearest to the declaration.
func (e *Engine) commentPrompt(ctx context.Context, fe parse.Frontend, d autodoc.Declaration) string {
	data := commentData{
		Language:  fe.Language(),
		StyleHint: styleHint(fe.Style(), fe.Language()),
	}
	if ex, ok := e.exemplars.Nearest(ctx, fe.Language(), d.Body); ok {
		data.ExampleCode = ex.Code
		data.ExampleComment = ex.Comment
	}
	return e.prompts.Comment(data)
}

// writeMarkdownDoc generates the API documentation for the commented
// source and writes docs/doc_<base>.md.
func (e *Engine) writeMarkdownDoc(ctx context.Context, outBase, dir, file string, commented []byte) (string, error) {
	proj := e.projects.Context(dir)
	system := e.prompts.Doc(docData{
		ProjectName: proj.Name,
		Manifests:   proj.promptLines(),
	})

	md, err := e.generator.Generate(ctx, system, string(commented))
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(file, filepath.Ext(file))
	docPath := filepath.Join(outBase, "docs", "doc_"+base+".md")
	if err := writeArtifact(docPath, []byte(strings.TrimSpace(md)+"\n")); err != nil {
		return "", err
	}
	return docPath, nil
}

// writeTests generates test/test_<file>: an import preamble followed by
// one generated test per class method. Files without class methods get no
// test file.
func (e *Engine) writeTests(ctx context.Context, outBase, path, file, language string, source []byte, decls []autodoc.Declaration) (string, error) {
	var methods []autodoc.Declaration
	for _, d := range decls {
		if d.Kind == autodoc.DeclMethod {
			methods = append(methods, d)
		}
	}
	if len(methods) == 0 {
		return "", nil
	}

	testPath := filepath.Join(outBase, "test", testFileName(language, file))

	importMsg := e.prompts.TestImport(testImportData{CodeFile: path, TestFile: testPath})
	out, err := e.generator.Generate(ctx, "", importMsg)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(codeFrom(out))
	sb.WriteString("\n\n")

	system := e.prompts.Test()
	for _, m := range methods {
		slog.Debug("requesting test", "method", m.Name)
		out, err := e.generator.Generate(ctx, system, testMethodMessage(string(source), m.Name))
		if err != nil {
			return "", err
		}
		sb.WriteString(codeFrom(out))
		sb.WriteString("\n\n")
	}

	if err := writeArtifact(testPath, []byte(sb.String())); err != nil {
		return "", err
	}
	return testPath, nil
}

// testMethodMessage is the user message for one per-method test request.
func testMethodMessage(source, method string) string {
	return fmt.Sprintf("Here is a class:\n'''\n%s\n'''\n\nImplement a test for the method %q.", source, method)
}

// codeFrom pulls fenced code out of a model message, falling back to the
// trimmed message when no fences are present.
func codeFrom(msg string) string {
	if code := extractFenced(msg); code != "" {
		return code
	}
	return strings.TrimSpace(msg)
}

// testFileName mirrors each ecosystem's test naming convention.
func testFileName(language, file string) string {
	switch language {
	case "javascript", "typescript":
		ext := filepath.Ext(file)
		return strings.TrimSuffix(file, ext) + ".test" + ext
	default:
		return "test_" + file
	}
}

// outputDir returns where artifacts go for a source in dir.
func (e *Engine) outputDir(dir string) string {
	if e.cfg != nil && e.cfg.Output.Dir != "" {
		return e.cfg.Output.Dir
	}
	return dir
}

// writeArtifact writes data via a temp file and rename, creating parent
// directories as needed. A failed write leaves no partial file behind.
func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return autodoc.E(autodoc.CodeOutput, "write", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return autodoc.E(autodoc.CodeOutput, "write", err)
	}
	return nil
}
