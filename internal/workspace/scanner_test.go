package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRejectsNonDirectory(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing"), Options{}); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
	dir := t.TempDir()
	writeFile(t, dir, "plain.txt", "x")
	if _, err := Scan(filepath.Join(dir, "plain.txt"), Options{}); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory for a file, got %v", err)
	}
}

func TestScanRejectsHiddenSegment(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".secrets", "project")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Scan(hidden, Options{}); !errors.Is(err, ErrHiddenPath) {
		t.Fatalf("expected ErrHiddenPath, got %v", err)
	}
}

func TestScanBuildsSortedTreeAndSkipsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "go.mod", "module demo\n")
	writeFile(t, dir, "src/util.go", "package src\n")
	writeFile(t, dir, "node_modules/dep/index.js", "junk")
	writeFile(t, dir, ".git/config", "junk")
	writeFile(t, dir, "logo.png", "binary")
	writeFile(t, dir, ".hidden.txt", "junk")

	ctx, err := Scan(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"go.mod", "main.go", "src/util.go"}
	if len(ctx.FileTree) != len(want) {
		t.Fatalf("tree %v, want %v", ctx.FileTree, want)
	}
	for i, w := range want {
		if ctx.FileTree[i] != w {
			t.Fatalf("tree %v, want %v", ctx.FileTree, want)
		}
	}
	if ctx.TotalFiles != 3 {
		t.Fatalf("expected 3 files, got %d", ctx.TotalFiles)
	}
}

func TestScanDetectsManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module demo\n")
	writeFile(t, dir, "main.go", "package main\n")

	ctx, err := Scan(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ManifestName != "go.mod" {
		t.Fatalf("expected go.mod manifest, got %q", ctx.ManifestName)
	}
	if ctx.LanguageHint != "go" {
		t.Fatalf("expected go hint, got %q", ctx.LanguageHint)
	}
	if !strings.Contains(ctx.ManifestContent, "module demo") {
		t.Fatalf("manifest content not read: %q", ctx.ManifestContent)
	}
}

func TestScanManifestPriority(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{}")
	writeFile(t, dir, "go.mod", "module demo\n")

	ctx, err := Scan(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ManifestName != "package.json" {
		t.Fatalf("package.json should win priority, got %q", ctx.ManifestName)
	}
}

func TestScanSamplesSmallTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.go", "package small\n")
	writeFile(t, dir, "big.go", strings.Repeat("x", 2048))
	writeFile(t, dir, "data.bin", "binary-ish")

	ctx, err := Scan(dir, Options{MaxContextFiles: 10, MaxFileSizeKB: 1})
	if err != nil {
		t.Fatal(err)
	}
	byPath := map[string]FileEntry{}
	for _, f := range ctx.Files {
		byPath[f.RelativePath] = f
	}
	if byPath["small.go"].Content == "" {
		t.Error("small text file should be sampled")
	}
	if byPath["big.go"].Content != "" {
		t.Error("oversized file must not be sampled")
	}
	if byPath["data.bin"].Content != "" {
		t.Error("non-text extension must not be sampled")
	}
}

func TestScanSampleLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go"} {
		writeFile(t, dir, name, "package x\n")
	}
	ctx, err := Scan(dir, Options{MaxContextFiles: 2, MaxFileSizeKB: 32})
	if err != nil {
		t.Fatal(err)
	}
	sampled := 0
	for _, f := range ctx.Files {
		if f.Content != "" {
			sampled++
		}
	}
	if sampled != 2 {
		t.Fatalf("expected 2 sampled files, got %d", sampled)
	}
}

func TestContextHint(t *testing.T) {
	ctx := &Context{LanguageHint: "javascript/typescript", FileTree: []string{"next.config.js", "package.json"}}
	if got := ctx.Hint(); got != "javascript/typescript / Next.js" {
		t.Fatalf("unexpected hint %q", got)
	}
	empty := &Context{}
	if got := empty.Hint(); got != "" {
		t.Fatalf("empty context should hint empty, got %q", got)
	}
}

func TestToXML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module demo\n")
	writeFile(t, dir, "main.go", "package main\n")

	ctx, err := Scan(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	xml := ctx.ToXML()
	for _, frag := range []string{
		"<project_context>", "</project_context>",
		"<file>main.go</file>", `name="go.mod"`, "<sampled_files>",
	} {
		if !strings.Contains(xml, frag) {
			t.Errorf("missing %q in xml:\n%s", frag, xml)
		}
	}
}
