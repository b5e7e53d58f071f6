// Package dockerfile generates the per-language container build definition
// from embedded templates.
package dockerfile

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/language"
	"github.com/kubeship/kubeship/internal/render"
)

//go:embed templates/*.tmpl
var templates embed.FS

// artifactGlob matches the single runtime jar a Maven build leaves in the
// build output directory.
const artifactGlob = "*SNAPSHOT.jar"

// BuildSpec names the generated Dockerfile and the directory to use as the
// image build context. Java builds use only the prebuilt artifact
// directory; Python builds ship the whole module tree.
type BuildSpec struct {
	Dockerfile string
	ContextDir string
}

type templateData struct {
	RegistryHost string
	Jar          string
	Port         string
	Namespace    string
	Collector    string
}

// Generate writes the Dockerfile for the detected language into the build
// context directory, overwriting any previous run's output, and returns
// where the image build should run.
func Generate(eng *render.Engine, lang language.Language, moduleDir string, env envctx.Environment, port, collector string) (BuildSpec, error) {
	data := templateData{
		RegistryHost: env.RegistryHost(),
		Port:         port,
		Namespace:    env.Namespace,
		Collector:    collector,
	}

	var contextDir string
	switch lang {
	case language.Java:
		contextDir = filepath.Join(moduleDir, "target")
		jar, err := findArtifact(contextDir)
		if err != nil {
			return BuildSpec{}, err
		}
		data.Jar = jar
	case language.Python:
		contextDir = moduleDir
	default:
		// unreachable: the detector only emits the two known languages
		return BuildSpec{}, fmt.Errorf("unsupported language %q", lang)
	}

	tpl, err := templates.ReadFile(fmt.Sprintf("templates/%s.dockerfile.tmpl", lang))
	if err != nil {
		return BuildSpec{}, fmt.Errorf("load dockerfile template: %w", err)
	}
	out, err := eng.RenderString(string(lang)+"-dockerfile", string(tpl), data)
	if err != nil {
		return BuildSpec{}, err
	}

	path := filepath.Join(contextDir, "Dockerfile")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return BuildSpec{}, fmt.Errorf("write dockerfile: %w", err)
	}
	return BuildSpec{Dockerfile: path, ContextDir: contextDir}, nil
}

// findArtifact requires exactly one SNAPSHOT jar in dir. The original build
// convention assumes a single runtime artifact; zero or several means the
// module was not built, or was built in a way this tool cannot interpret.
func findArtifact(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, artifactGlob))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s artifact found in %s", artifactGlob, dir)
	case 1:
		return filepath.Base(matches[0]), nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = filepath.Base(m)
		}
		return "", fmt.Errorf("expected exactly one %s artifact in %s, found %d: %s",
			artifactGlob, dir, len(matches), strings.Join(names, ", "))
	}
}
