package generate

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jellydator/ttlcache/v3"
)

// ProjectContext holds best-effort context about the directory a source
// file lives in. It feeds the markdown documentation prompt.
type ProjectContext struct {
	Dir string
	// Name is the project name detected from a manifest, if any.
	Name string
	// Listing is the directory file listing, space-separated and capped.
	Listing string
	// Manifests maps a manifest label to its extracted summary.
	Manifests map[string]string
}

const (
	projectCacheTTL  = 1 * time.Hour
	manifestMaxBytes = 512
	listingMaxBytes  = 512
)

// ProjectCache is a TTL cache of ProjectContext entries keyed by absolute
// directory, so documenting many files from one process gathers each
// directory once.
type ProjectCache struct {
	cache *ttlcache.Cache[string, *ProjectContext]
}

// NewProjectCache creates a ProjectCache with TTL-based expiration.
func NewProjectCache() *ProjectCache {
	c := ttlcache.New[string, *ProjectContext](
		ttlcache.WithTTL[string, *ProjectContext](projectCacheTTL),
		ttlcache.WithDisableTouchOnHit[string, *ProjectContext](),
	)
	go c.Start()
	return &ProjectCache{cache: c}
}

// Close stops the cache expiration loop.
func (pc *ProjectCache) Close() {
	pc.cache.Stop()
}

// Context returns the cached context for dir, gathering it on a miss.
func (pc *ProjectCache) Context(dir string) *ProjectContext {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if item := pc.cache.Get(abs); item != nil {
		return item.Value()
	}
	entry := gatherProject(abs)
	pc.cache.Set(abs, entry, ttlcache.DefaultTTL)
	return entry
}

// gatherProject collects directory context. Everything here is
// best-effort: unreadable files are skipped, never reported.
func gatherProject(dir string) *ProjectContext {
	entry := &ProjectContext{
		Dir:       dir,
		Manifests: make(map[string]string),
	}

	if names, err := os.ReadDir(dir); err == nil {
		parts := make([]string, 0, len(names))
		for _, e := range names {
			parts = append(parts, e.Name())
		}
		entry.Listing = truncate(strings.Join(parts, " "), listingMaxBytes)
	}

	gatherManifests(dir, entry)

	slog.Debug("gathered project context", "dir", dir, "name", entry.Name)
	return entry
}

// manifestFiles lists the manifest filenames to look for.
var manifestFiles = []string{
	"package.json",
	"pyproject.toml",
	"Cargo.toml",
	"go.mod",
	"Makefile",
}

func gatherManifests(dir string, entry *ProjectContext) {
	for _, name := range manifestFiles {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var label, extracted, projName string
		switch name {
		case "package.json":
			label = "package.json scripts"
			extracted, projName = extractPackageJSON(string(data))
		case "pyproject.toml":
			label = name
			extracted, projName = extractPyprojectInfo(string(data))
		case "Cargo.toml":
			label = name
			extracted, projName = extractCargoInfo(string(data))
		case "go.mod":
			label = name
			extracted, projName = extractGoModInfo(string(data))
		case "Makefile":
			label = "Makefile targets"
			extracted = extractMakefileTargets(string(data))
		}

		if extracted != "" {
			entry.Manifests[label] = extracted
		}
		if entry.Name == "" && projName != "" {
			entry.Name = projName
		}
	}
}

// extractPackageJSON extracts the scripts object and the package name.
func extractPackageJSON(content string) (string, string) {
	var pkg struct {
		Name    string            `json:"name"`
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return "", ""
	}
	parts := make([]string, 0, len(pkg.Scripts))
	for k, v := range pkg.Scripts {
		parts = append(parts, k+": "+v)
	}
	return truncate(strings.Join(parts, ", "), manifestMaxBytes), pkg.Name
}

type pyprojectToml struct {
	Project struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
	} `toml:"project"`
}

// extractPyprojectInfo extracts the project name and description.
func extractPyprojectInfo(content string) (string, string) {
	var pyproject pyprojectToml
	if _, err := toml.Decode(content, &pyproject); err != nil {
		return "", ""
	}
	name := pyproject.Project.Name
	if name == "" {
		return "", ""
	}
	summary := `name = "` + name + `"`
	if pyproject.Project.Description != "" {
		summary += `, description = "` + pyproject.Project.Description + `"`
	}
	return truncate(summary, manifestMaxBytes), name
}

type cargoToml struct {
	Package struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
	} `toml:"package"`
}

// extractCargoInfo extracts the crate name and description.
func extractCargoInfo(content string) (string, string) {
	var cargo cargoToml
	if _, err := toml.Decode(content, &cargo); err != nil {
		return "", ""
	}
	name := cargo.Package.Name
	if name == "" {
		return "", ""
	}
	summary := `name = "` + name + `"`
	if cargo.Package.Description != "" {
		summary += `, description = "` + cargo.Package.Description + `"`
	}
	return truncate(summary, manifestMaxBytes), name
}

// extractGoModInfo extracts the module path and Go version.
func extractGoModInfo(content string) (string, string) {
	var parts []string
	var name string
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			parts = append(parts, line)
			name = filepath.Base(strings.TrimSpace(strings.TrimPrefix(line, "module ")))
		} else if strings.HasPrefix(line, "go ") && !strings.HasPrefix(line, "go.") {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, ", "), name
}

// extractMakefileTargets extracts target names from a Makefile.
func extractMakefileTargets(content string) string {
	var targets []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		// Skip recipe lines, comments, and special targets
		if len(line) == 0 || line[0] == '\t' || line[0] == '#' || line[0] == '.' {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		// Skip assignment operators (:=)
		if idx+1 < len(line) && line[idx+1] == '=' {
			continue
		}
		target := strings.TrimSpace(line[:idx])
		if strings.ContainsAny(target, "$%") {
			continue
		}
		if !seen[target] {
			seen[target] = true
			targets = append(targets, target)
		}
	}
	return truncate(strings.Join(targets, ", "), manifestMaxBytes)
}

// promptLines flattens the context into lines for the doc prompt.
func (p *ProjectContext) promptLines() []string {
	if p == nil {
		return nil
	}
	var lines []string
	if p.Listing != "" {
		lines = append(lines, "files: "+p.Listing)
	}
	labels := make([]string, 0, len(p.Manifests))
	for label := range p.Manifests {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		lines = append(lines, label+": "+p.Manifests[label])
	}
	return lines
}

// truncate truncates s to maxBytes, appending "..." if truncated.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	return s[:maxBytes] + "..."
}
