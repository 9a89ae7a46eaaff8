// Package autodoc defines the shared types for the documentation pipeline:
// source documents, extracted declarations, run results, and the error
// taxonomy surfaced to callers.
package autodoc

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// Document is a source file loaded into memory. It is not mutated after
// ReadDocument returns; the pipeline works on copies.
type Document struct {
	// Path is the file system path the document was read from.
	Path string
	// Source is the raw file content.
	Source []byte
}

// ReadDocument loads a source file. The returned error carries CodeInput
// when the path is missing, unreadable, or not valid UTF-8 text.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, E(CodeInput, "read", err)
	}
	if !utf8.Valid(data) {
		return nil, E(CodeInput, "read", fmt.Errorf("%s: not valid UTF-8 text", path))
	}
	return &Document{Path: path, Source: data}, nil
}

// DeclKind classifies an extracted declaration.
type DeclKind string

const (
	DeclFunction DeclKind = "function"
	DeclMethod   DeclKind = "method"
	DeclClass    DeclKind = "class"
	DeclImport   DeclKind = "import"
)

// Declaration is a single declaration extracted from a source file.
// Byte offsets refer to the original Document.Source.
type Declaration struct {
	Kind DeclKind
	// Name is the declared identifier (empty for anonymous declarations).
	Name string
	// Parent is the enclosing class name for methods, empty otherwise.
	Parent string
	// StartByte and EndByte delimit the declaration in the source.
	StartByte int
	EndByte   int
	// Indent is the column the declaration starts at.
	Indent int
	// Body is the full declaration text, signature included.
	Body string
}

// Result reports what a pipeline run produced.
type Result struct {
	// SourcePath is the input file.
	SourcePath string `json:"source_path"`
	// CommentPath is the commented copy of the source, empty if nothing
	// was documented.
	CommentPath string `json:"comment_path,omitempty"`
	// DocPath is the generated markdown documentation file, if enabled.
	DocPath string `json:"doc_path,omitempty"`
	// TestPath is the generated test file, if enabled and methods were found.
	TestPath string `json:"test_path,omitempty"`
	// Documented is the number of declarations that received a comment.
	Documented int `json:"documented"`
}

// Code identifies the failure class of a pipeline error.
type Code string

const (
	// CodeInput covers missing, unreadable, or unsupported input files.
	CodeInput Code = "input"
	// CodeTransport covers an unreachable inference endpoint.
	CodeTransport Code = "transport"
	// CodeService covers error responses from the inference endpoint.
	CodeService Code = "service"
	// CodeOutput covers failures writing result files.
	CodeOutput Code = "output"
)

// Error is a pipeline error with a failure class and the operation that
// produced it. It wraps the underlying cause for errors.Is/As.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a failure class and operation name. A nil err yields nil.
func E(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Err: err}
}

// ErrCode returns the failure class of err, walking the wrap chain.
// Errors produced outside the pipeline report an empty Code.
func ErrCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
