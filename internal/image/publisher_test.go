package image

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/build"
	dimage "github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeship/kubeship/internal/dockerfile"
	"github.com/kubeship/kubeship/internal/registry"
)

type fakeDocker struct {
	calls       []string
	buildTags   []string
	buildStream string
	pushStream  string
	tagErr      error
	pushErr     error
	removeErr   error
	removed     []string
	pushedRef   string
	pushedAuth  string
}

func (f *fakeDocker) ImageBuild(_ context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	// the context must be consumable
	if _, err := io.Copy(io.Discard, buildContext); err != nil {
		return build.ImageBuildResponse{}, err
	}
	f.calls = append(f.calls, "build")
	f.buildTags = options.Tags
	body := f.buildStream
	if body == "" {
		body = `{"stream":"ok"}`
	}
	return build.ImageBuildResponse{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeDocker) ImageTag(_ context.Context, source, target string) error {
	f.calls = append(f.calls, "tag "+source+" "+target)
	return f.tagErr
}

func (f *fakeDocker) ImagePush(_ context.Context, ref string, options dimage.PushOptions) (io.ReadCloser, error) {
	f.calls = append(f.calls, "push "+ref)
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushedRef = ref
	f.pushedAuth = options.RegistryAuth
	body := f.pushStream
	if body == "" {
		body = `{"status":"pushed"}`
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeDocker) ImageRemove(_ context.Context, imageID string, _ dimage.RemoveOptions) ([]dimage.DeleteResponse, error) {
	f.calls = append(f.calls, "remove "+imageID)
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	f.removed = append(f.removed, imageID)
	return nil, nil
}

func (f *fakeDocker) Close() error { return nil }

type fakeRegistry struct {
	creds       registry.Credentials
	credsErr    error
	ensured     []string
	ensureErr   error
	wasCreated  bool
}

func (f *fakeRegistry) Credentials(context.Context) (registry.Credentials, error) {
	return f.creds, f.credsErr
}

func (f *fakeRegistry) EnsureRepository(_ context.Context, name string) (bool, error) {
	if f.ensureErr != nil {
		return false, f.ensureErr
	}
	f.ensured = append(f.ensured, name)
	return f.wasCreated, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildContext(t *testing.T) dockerfile.BuildSpec {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch"), 0o644))
	return dockerfile.BuildSpec{Dockerfile: filepath.Join(dir, "Dockerfile"), ContextDir: dir}
}

func TestPublish(t *testing.T) {
	fake := &fakeDocker{}
	reg := &fakeRegistry{
		creds:      registry.Credentials{Username: "AWS", Password: "tok", ServerAddress: "123456789012.dkr.ecr.us-east-1.amazonaws.com"},
		wasCreated: true,
	}
	p := &Publisher{api: fake, log: discard()}

	ref, err := p.Publish(context.Background(), buildContext(t), reg, "api", "57",
		"123456789012.dkr.ecr.us-east-1.amazonaws.com", map[string]string{"git.sha": "abcd1234"})
	require.NoError(t, err)
	assert.Equal(t, "123456789012.dkr.ecr.us-east-1.amazonaws.com/api:57", ref)

	assert.Equal(t, []string{"api"}, reg.ensured)
	assert.Equal(t, []string{"api:57"}, fake.buildTags)
	assert.Equal(t, []string{
		"build",
		"tag api:57 123456789012.dkr.ecr.us-east-1.amazonaws.com/api:57",
		"push 123456789012.dkr.ecr.us-east-1.amazonaws.com/api:57",
		"remove 123456789012.dkr.ecr.us-east-1.amazonaws.com/api:57",
		"remove api:57",
	}, fake.calls)
	assert.NotEmpty(t, fake.pushedAuth)
}

func TestPublish_AuthFailureStopsEverything(t *testing.T) {
	fake := &fakeDocker{}
	reg := &fakeRegistry{credsErr: errors.New("expired credentials")}
	p := &Publisher{api: fake, log: discard()}

	_, err := p.Publish(context.Background(), buildContext(t), reg, "api", "57", "host", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry auth")
	assert.Empty(t, fake.calls)
}

func TestPublish_BuildStreamError(t *testing.T) {
	fake := &fakeDocker{buildStream: `{"stream":"step 1"}` + "\n" + `{"error":"COPY failed: no such file"}`}
	reg := &fakeRegistry{}
	p := &Publisher{api: fake, log: discard()}

	_, err := p.Publish(context.Background(), buildContext(t), reg, "api", "57", "host", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY failed")
	assert.Equal(t, []string{"build"}, fake.calls, "nothing after a failed build")
}

func TestPublish_PushFailureLeavesLocalTags(t *testing.T) {
	fake := &fakeDocker{pushErr: errors.New("denied")}
	reg := &fakeRegistry{}
	p := &Publisher{api: fake, log: discard()}

	_, err := p.Publish(context.Background(), buildContext(t), reg, "api", "57", "host", nil)
	require.Error(t, err)
	// no rollback: the locally tagged images are not cleaned up
	assert.Empty(t, fake.removed)
}

func TestPublish_PushStreamError(t *testing.T) {
	fake := &fakeDocker{pushStream: `{"errorDetail":{"message":"denied"},"error":"denied: requested access to the resource is denied"}`}
	reg := &fakeRegistry{}
	p := &Publisher{api: fake, log: discard()}

	_, err := p.Publish(context.Background(), buildContext(t), reg, "api", "57", "host", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestDrainStream(t *testing.T) {
	assert.NoError(t, drainStream(strings.NewReader(`{"stream":"a"}`+"\n"+`{"stream":"b"}`)))
	assert.Error(t, drainStream(strings.NewReader(`{"error":"boom"}`)))
	assert.NoError(t, drainStream(strings.NewReader("")))
}
