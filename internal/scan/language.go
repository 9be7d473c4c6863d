package scan

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

var languageSuffixes = map[string]string{
	"python":     ".py",
	"javascript": ".js",
	"typescript": ".ts",
	"java":       ".java",
	"csharp":     ".cs",
	"go":         ".go",
	"ruby":       ".rb",
}

// SuffixForLanguage returns the file extension used when a snippet is
// written to a temporary file, so that extension-sensitive tools see the
// right kind of input. Unrecognized languages get a neutral .txt.
func SuffixForLanguage(language string) string {
	if suffix, ok := languageSuffixes[strings.ToLower(language)]; ok {
		return suffix
	}
	return ".txt"
}

var extensionLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".cs":   "csharp",
	".go":   "go",
	".rb":   "ruby",
}

// DetectLanguage guesses the dominant language of a target. For a file it
// uses the extension; for a directory it looks for well-known manifests
// first and falls back to counting source files. Returns "" when nothing
// recognizable is found.
func DetectLanguage(target string) string {
	info, err := os.Stat(target)
	if err != nil {
		return ""
	}
	if !info.IsDir() {
		return extensionLanguages[strings.ToLower(filepath.Ext(target))]
	}

	if lang := languageFromManifests(target); lang != "" {
		return lang
	}

	counts := map[string]int{}
	entries, err := os.ReadDir(target)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			counts[lang]++
		}
	}
	best, bestCount := "", 0
	for lang, n := range counts {
		if n > bestCount {
			best, bestCount = lang, n
		}
	}
	return best
}

func languageFromManifests(dir string) string {
	if data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml")); err == nil {
		var doc map[string]interface{}
		if toml.Unmarshal(data, &doc) == nil {
			return "python"
		}
	}
	for _, name := range []string{"requirements.txt", "setup.py", "Pipfile"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return "python"
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err == nil {
			return "typescript"
		}
		return "javascript"
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return "go"
	}
	if _, err := os.Stat(filepath.Join(dir, "pom.xml")); err == nil {
		return "java"
	}
	return ""
}
