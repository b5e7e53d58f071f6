package dockerfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/language"
	"github.com/kubeship/kubeship/internal/render"
)

var testEnv = envctx.Environment{
	Namespace:      "staging",
	ClusterContext: "staging",
	AccountID:      "123456789012",
	Region:         "us-east-1",
	Registry:       "123456789012.dkr.ecr.us-east-1.amazonaws.com",
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerate_Java(t *testing.T) {
	mod := t.TempDir()
	writeFile(t, filepath.Join(mod, "target", "api-1.2.0-SNAPSHOT.jar"), "jar")

	spec, err := Generate(render.NewEngine(), language.Java, mod, testEnv, "8080", "oap.tracing:11800")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mod, "target"), spec.ContextDir)
	assert.Equal(t, filepath.Join(mod, "target", "Dockerfile"), spec.Dockerfile)

	b, err := os.ReadFile(spec.Dockerfile)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "FROM 123456789012.dkr.ecr.us-east-1.amazonaws.com/openjdk11-agent:latest")
	assert.Contains(t, content, "COPY api-1.2.0-SNAPSHOT.jar /app/app.jar")
	assert.Contains(t, content, "EXPOSE 8080")
	assert.Contains(t, content, "-Dskywalking.collector.backend_service=oap.tracing:11800")
	assert.Contains(t, content, "-Dskywalking.agent.namespace=staging")
}

func TestGenerate_Java_NoArtifact(t *testing.T) {
	mod := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(mod, "target"), 0o755))

	_, err := Generate(render.NewEngine(), language.Java, mod, testEnv, "8080", "oap:11800")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no *SNAPSHOT.jar artifact")
}

func TestGenerate_Java_MultipleArtifacts(t *testing.T) {
	mod := t.TempDir()
	writeFile(t, filepath.Join(mod, "target", "api-1.0-SNAPSHOT.jar"), "a")
	writeFile(t, filepath.Join(mod, "target", "api-2.0-SNAPSHOT.jar"), "b")

	_, err := Generate(render.NewEngine(), language.Java, mod, testEnv, "8080", "oap:11800")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 2")
}

func TestGenerate_Python(t *testing.T) {
	mod := t.TempDir()
	writeFile(t, filepath.Join(mod, "requirements.txt"), "flask")

	spec, err := Generate(render.NewEngine(), language.Python, mod, testEnv, "8080", "oap:11800")
	require.NoError(t, err)
	assert.Equal(t, mod, spec.ContextDir)

	b, err := os.ReadFile(spec.Dockerfile)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "FROM python:3.9-slim")
	assert.Contains(t, content, "ENV HOST=0.0.0.0")
	assert.Contains(t, content, "pip install --no-cache-dir -r requirements.txt")
	assert.Contains(t, content, `ENTRYPOINT ["python", "main.py"]`)
}

func TestGenerate_Overwrites(t *testing.T) {
	mod := t.TempDir()
	writeFile(t, filepath.Join(mod, "requirements.txt"), "flask")
	writeFile(t, filepath.Join(mod, "Dockerfile"), "stale content")

	spec, err := Generate(render.NewEngine(), language.Python, mod, testEnv, "9000", "oap:11800")
	require.NoError(t, err)

	b, err := os.ReadFile(spec.Dockerfile)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "stale")
}

func TestGenerate_UnknownLanguage(t *testing.T) {
	_, err := Generate(render.NewEngine(), language.Language("ruby"), t.TempDir(), testEnv, "8080", "oap:11800")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}
