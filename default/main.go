// Package defaults provides embedded default assets: the default config,
// the prompt templates, and the built-in exemplar corpus.
package defaults

import _ "embed"

//go:embed default_config.json
var DefaultConfigJSON []byte

//go:embed prompt_comment.md
var CommentPrompt string

//go:embed prompt_doc.md
var DocPrompt string

//go:embed prompt_test.md
var TestPrompt string

//go:embed prompt_test_import.md
var TestImportPrompt string

//go:embed exemplars.json
var ExemplarsJSON []byte
