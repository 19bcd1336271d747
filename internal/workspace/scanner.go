// Package workspace walks a project directory and builds a structured
// snapshot for prompt injection: file tree, manifest metadata, and the
// contents of small source files.
//
// The scanner never follows symlinks, never descends into hidden or
// build directories, and produces deterministic, alphabetically sorted
// output.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotDirectory is returned when the scan root does not exist or
	// is not a directory.
	ErrNotDirectory = errors.New("workspace: not a directory")

	// ErrHiddenPath is returned when the resolved root contains a
	// hidden path segment. Scanning dotted trees is refused outright.
	ErrHiddenPath = errors.New("workspace: hidden path segment")
)

// Options bounds how much of the workspace the scanner reads.
type Options struct {
	MaxContextFiles int // max files whose contents are sampled
	MaxFileSizeKB   int // files larger than this are listed but not read
}

// DefaultOptions returns the standard scan limits.
func DefaultOptions() Options {
	return Options{MaxContextFiles: 30, MaxFileSizeKB: 32}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxContextFiles <= 0 {
		o.MaxContextFiles = d.MaxContextFiles
	}
	if o.MaxFileSizeKB <= 0 {
		o.MaxFileSizeKB = d.MaxFileSizeKB
	}
	return o
}

// FileEntry describes a single discovered file. Content is populated
// only for small text files.
type FileEntry struct {
	RelativePath string `json:"relative_path"`
	SizeBytes    int64  `json:"size_bytes"`
	Extension    string `json:"extension"`
	Content      string `json:"content,omitempty"`
}

// Context is the aggregated snapshot of a workspace.
type Context struct {
	Root            string      `json:"root"`
	FileTree        []string    `json:"file_tree"`
	Files           []FileEntry `json:"files"`
	ManifestName    string      `json:"manifest_name,omitempty"`
	ManifestContent string      `json:"manifest_content,omitempty"`
	LanguageHint    string      `json:"language_hint,omitempty"`
	TotalFiles      int         `json:"total_files"`
}

// Scan walks root and returns a Context snapshot. The walk prunes
// ignored and hidden directories, skips ignored extensions, detects the
// primary manifest, and samples small text files up to the configured
// limits.
func Scan(root string, opts Options) (*Context, error) {
	opts = opts.withDefaults()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace path: %w", err)
	}
	for _, seg := range strings.Split(filepath.ToSlash(abs), "/")[1:] {
		if strings.HasPrefix(seg, ".") {
			return nil, ErrHiddenPath
		}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, ErrNotDirectory
	}

	ctx := &Context{Root: abs}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == abs {
				return nil
			}
			if strings.HasPrefix(name, ".") || ignoredDirs[name] {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ignoredExts[ext] {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		ctx.FileTree = append(ctx.FileTree, rel)
		ctx.Files = append(ctx.Files, FileEntry{
			RelativePath: rel,
			SizeBytes:    fi.Size(),
			Extension:    ext,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk workspace: %w", err)
	}

	sort.Strings(ctx.FileTree)
	sort.Slice(ctx.Files, func(i, j int) bool {
		return ctx.Files[i].RelativePath < ctx.Files[j].RelativePath
	})
	ctx.TotalFiles = len(ctx.Files)

	for _, m := range manifestOrder {
		p := filepath.Join(abs, m.name)
		fi, err := os.Stat(p)
		if err != nil || fi.IsDir() {
			continue
		}
		ctx.ManifestName = m.name
		ctx.LanguageHint = m.lang
		if raw, err := os.ReadFile(p); err == nil {
			if len(raw) > 8192 {
				raw = raw[:8192]
			}
			ctx.ManifestContent = string(raw)
		}
		break
	}

	maxBytes := int64(opts.MaxFileSizeKB) * 1024
	sampled := 0
	for i := range ctx.Files {
		if sampled >= opts.MaxContextFiles {
			break
		}
		entry := &ctx.Files[i]
		if entry.SizeBytes > maxBytes || !textExts[entry.Extension] {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(abs, filepath.FromSlash(entry.RelativePath)))
		if err != nil {
			continue
		}
		entry.Content = string(raw)
		sampled++
	}

	return ctx, nil
}

// ToXML serialises the context into an XML fragment for prompt injection.
func (c *Context) ToXML() string {
	var b strings.Builder
	b.WriteString("<project_context>\n")
	hint := c.LanguageHint
	if hint == "" {
		hint = "unknown"
	}
	fmt.Fprintf(&b, "  <workspace root=%q language_hint=%q />\n", c.Root, hint)
	fmt.Fprintf(&b, "  <total_files>%d</total_files>\n", c.TotalFiles)

	b.WriteString("  <file_tree>\n")
	for _, fp := range c.FileTree {
		fmt.Fprintf(&b, "    <file>%s</file>\n", fp)
	}
	b.WriteString("  </file_tree>\n")

	if c.ManifestContent != "" {
		fmt.Fprintf(&b, "  <manifest name=%q>\n", c.ManifestName)
		fmt.Fprintf(&b, "    <![CDATA[%s]]>\n", c.ManifestContent)
		b.WriteString("  </manifest>\n")
	}

	var sampled []FileEntry
	for _, f := range c.Files {
		if f.Content != "" {
			sampled = append(sampled, f)
		}
	}
	if len(sampled) > 0 {
		b.WriteString("  <sampled_files>\n")
		for _, f := range sampled {
			fmt.Fprintf(&b, "    <file path=%q>\n", f.RelativePath)
			fmt.Fprintf(&b, "      <![CDATA[%s]]>\n", f.Content)
			b.WriteString("    </file>\n")
		}
		b.WriteString("  </sampled_files>\n")
	}

	b.WriteString("</project_context>")
	return b.String()
}

// SampledText concatenates the sampled file contents, used when the
// security audit wants to scan workspace material alongside the vibe.
func (c *Context) SampledText() string {
	var b strings.Builder
	for _, f := range c.Files {
		if f.Content != "" {
			b.WriteString(f.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Hint condenses the context into a short "language / framework" label.
func (c *Context) Hint() string {
	var parts []string
	if c.LanguageHint != "" {
		parts = append(parts, c.LanguageHint)
	}
	inTree := make(map[string]bool, len(c.FileTree))
	for _, f := range c.FileTree {
		inTree[f] = true
	}
	for _, m := range markerOrder {
		if inTree[m.file] {
			dup := false
			for _, p := range parts {
				if p == m.framework {
					dup = true
				}
			}
			if !dup {
				parts = append(parts, m.framework)
			}
			break
		}
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, " / ")
}

var ignoredDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "__pycache__": true, ".venv": true, "venv": true,
	".idea": true, ".vscode": true, ".vs": true,
	"build": true, "dist": true, "out": true, ".next": true, ".nuxt": true,
	"target": true, "bin": true, "obj": true,
}

var ignoredExts = map[string]bool{
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".so": true,
	".dll": true, ".exe": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".svg": true, ".webp": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true,
	".lock": true,
}

var textExts = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".dart": true, ".rs": true, ".go": true,
	".java": true, ".kt": true, ".rb": true, ".php": true,
	".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".cs": true, ".swift": true, ".m": true, ".sql": true,
	".sh": true, ".bash": true, ".zsh": true,
	".html": true, ".css": true, ".scss": true, ".less": true,
	".json": true, ".yaml": true, ".yml": true,
	".toml": true, ".xml": true, ".md": true, ".txt": true,
	".env": true, ".ini": true, ".cfg": true,
	".graphql": true, ".proto": true, ".vue": true, ".svelte": true, ".astro": true,
}

// Manifest detection follows a fixed priority order; the first match wins.
var manifestOrder = []struct {
	name string
	lang string
}{
	{"package.json", "javascript/typescript"},
	{"pubspec.yaml", "dart/flutter"},
	{"Cargo.toml", "rust"},
	{"go.mod", "go"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"requirements.txt", "python"},
	{"pom.xml", "java"},
	{"build.gradle", "java/kotlin"},
	{"Gemfile", "ruby"},
	{"composer.json", "php"},
}

// Root-level framework markers, checked in order; the first hit wins.
var markerOrder = []struct {
	file      string
	framework string
}{
	{"next.config.js", "Next.js"}, {"next.config.ts", "Next.js"},
	{"nuxt.config.ts", "Nuxt"}, {"angular.json", "Angular"},
	{"svelte.config.js", "SvelteKit"}, {"astro.config.mjs", "Astro"},
	{"vite.config.ts", "Vite"}, {"vite.config.js", "Vite"},
	{"tailwind.config.js", "Tailwind"}, {"manage.py", "Django"},
	{"app.py", "Flask/FastAPI"}, {"pubspec.yaml", "Flutter"},
	{"Cargo.toml", "Rust"}, {"go.mod", "Go"}, {"CMakeLists.txt", "C/C++"},
	{"Dockerfile", "Docker"}, {"Gemfile", "Ruby"}, {"composer.json", "PHP"},
	{"pom.xml", "Java"}, {"build.gradle.kts", "Kotlin"},
	{"tsconfig.json", "TypeScript"}, {"package.json", "Node.js"},
}
