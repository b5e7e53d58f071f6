// Package language classifies a module by its marker files and locates the
// per-module application config document.
package language

import (
	"errors"
	"os"
	"path/filepath"
)

type Language string

const (
	Java   Language = "java"
	Python Language = "python"
)

var ErrUndetermined = errors.New("failed to determine code language")

// markers are checked in order; first match wins, so a module carrying both
// a pom.xml and a requirements.txt is classified as Java.
var markers = []struct {
	file string
	lang Language
}{
	{"pom.xml", Java},
	{"requirements.txt", Python},
}

// Detect inspects moduleDir for language marker files. This is a pure
// existence check, not a content classifier.
func Detect(moduleDir string) (Language, error) {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(moduleDir, m.file)); err == nil {
			return m.lang, nil
		}
	}
	return "", ErrUndetermined
}

// ConfigPath returns the conventional location of the module's application
// config document. No existence check: a missing document surfaces when its
// fields are resolved.
func ConfigPath(lang Language, moduleDir string) string {
	switch lang {
	case Java:
		return filepath.Join(moduleDir, "src", "main", "resources", "application.yml")
	default:
		return filepath.Join(moduleDir, "conf", "application.yml")
	}
}
