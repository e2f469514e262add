package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LanguageUnknown is used for files whose extension is not in the table
const LanguageUnknown = "Unknown"

var languagesByExt = map[string]string{
	"rs":    "Rust",
	"py":    "Python",
	"js":    "JavaScript",
	"ts":    "TypeScript",
	"jsx":   "JavaScript React",
	"tsx":   "TypeScript React",
	"go":    "Go",
	"cpp":   "C++",
	"cc":    "C++",
	"cxx":   "C++",
	"c":     "C",
	"h":     "C/C++ Header",
	"hpp":   "C/C++ Header",
	"java":  "Java",
	"kt":    "Kotlin",
	"php":   "PHP",
	"rb":    "Ruby",
	"swift": "Swift",
	"scala": "Scala",
	"clj":   "Clojure",
	"hs":    "Haskell",
	"elm":   "Elm",
	"dart":  "Dart",
	"lua":   "Lua",
	"vim":   "Vim Script",
	"sh":    "Bash",
	"bash":  "Bash",
	"zsh":   "Zsh",
	"fish":  "Fish",
	"ps1":   "PowerShell",
	"sql":   "SQL",
	"html":  "HTML",
	"css":   "CSS",
	"scss":  "SCSS",
	"sass":  "Sass",
	"less":  "Less",
	"md":    "Markdown",
	"yml":   "YAML",
	"yaml":  "YAML",
	"toml":  "TOML",
	"json":  "JSON",
	"xml":   "XML",
}

var languagesByName = map[string]string{
	"Dockerfile":     "Docker",
	"Makefile":       "Makefile",
	"CMakeLists.txt": "CMake",
}

// ProjectMarkers are the entries whose presence makes a directory a project root
var ProjectMarkers = []string{
	".git", "Cargo.toml", "package.json", "pyproject.toml", "requirements.txt", "go.mod", "pom.xml",
}

// DetectLanguage maps a path to a language name. Well-known file names win over
// extensions; extension-less files are "Text" and unknown extensions are LanguageUnknown.
func DetectLanguage(path string) string {
	base := filepath.Base(path)
	if lang, ok := languagesByName[base]; ok {
		return lang
	}

	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" {
		return "Text"
	}
	if lang, ok := languagesByExt[ext]; ok {
		return lang
	}
	return LanguageUnknown
}

// DetectProject returns the name of the nearest ancestor directory of path that
// contains a project marker, or "" when there is none
func DetectProject(path string) string {
	dir := filepath.Dir(path)
	for {
		if hasMarker(dir) {
			return filepath.Base(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func hasMarker(dir string) bool {
	for _, marker := range ProjectMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// Classifier resolves language and project for paths, remembering the project
// of each directory it has already walked
type Classifier struct {
	mu       sync.RWMutex
	projects map[string]string
}

func NewClassifier() *Classifier {
	return &Classifier{projects: make(map[string]string)}
}

// Reset forgets every remembered project so markers added or removed since
// the last walk are picked up
func (c *Classifier) Reset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.projects)
	c.projects = make(map[string]string)
	return n
}

// Classify returns the language and project ("" for none) of path
func (c *Classifier) Classify(path string) (language, project string) {
	dir := filepath.Dir(path)

	c.mu.RLock()
	project, ok := c.projects[dir]
	c.mu.RUnlock()

	if !ok {
		project = DetectProject(path)
		c.mu.Lock()
		c.projects[dir] = project
		c.mu.Unlock()
	}

	return DetectLanguage(path), project
}
