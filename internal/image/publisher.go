// Package image builds, tags, pushes, and cleans up container images
// through the Docker SDK.
package image

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/docker/docker/api/types/build"
	dimage "github.com/docker/docker/api/types/image"
	registrytypes "github.com/docker/docker/api/types/registry"
	dclient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"

	"github.com/kubeship/kubeship/internal/dockerfile"
	"github.com/kubeship/kubeship/internal/registry"
)

// api is the slice of the Docker client the publisher uses.
type api interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, ref string, options dimage.PushOptions) (io.ReadCloser, error)
	ImageRemove(ctx context.Context, imageID string, options dimage.RemoveOptions) ([]dimage.DeleteResponse, error)
	Close() error
}

// Registry is what the publisher needs from the registry side.
type Registry interface {
	Credentials(ctx context.Context) (registry.Credentials, error)
	EnsureRepository(ctx context.Context, name string) (bool, error)
}

type Publisher struct {
	api api
	log *slog.Logger
}

func NewPublisher(log *slog.Logger) (*Publisher, error) {
	cli, err := dclient.NewClientWithOpts(dclient.FromEnv, dclient.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Publisher{api: cli, log: log}, nil
}

func (p *Publisher) Close() error {
	return p.api.Close()
}

// Publish runs the full sequence: authenticate, ensure the repository,
// build from the generated Dockerfile's context, tag with the
// registry-qualified name, push, and remove both local tags. Each step must
// succeed before the next; a mid-sequence failure halts with no rollback.
func (p *Publisher) Publish(ctx context.Context, spec dockerfile.BuildSpec, reg Registry, service, buildID, host string, labels map[string]string) (string, error) {
	creds, err := reg.Credentials(ctx)
	if err != nil {
		return "", fmt.Errorf("registry auth: %w", err)
	}

	created, err := reg.EnsureRepository(ctx, service)
	if err != nil {
		return "", err
	}
	if created {
		p.log.Info("created registry repository", "repository", service)
	}

	localRef := service + ":" + buildID
	remoteRef := host + "/" + localRef

	if err := p.Build(ctx, spec, localRef, labels); err != nil {
		return "", err
	}
	if err := p.api.ImageTag(ctx, localRef, remoteRef); err != nil {
		return "", fmt.Errorf("tag %s as %s: %w", localRef, remoteRef, err)
	}
	if err := p.push(ctx, remoteRef, creds); err != nil {
		return "", err
	}

	// keep local disk from accumulating one image pair per run
	for _, ref := range []string{remoteRef, localRef} {
		if _, err := p.api.ImageRemove(ctx, ref, dimage.RemoveOptions{}); err != nil {
			return "", fmt.Errorf("remove local image %s: %w", ref, err)
		}
	}

	p.log.Info("published image", "image", remoteRef)
	return remoteRef, nil
}

// Build runs a docker build over the tar'd context directory.
func (p *Publisher) Build(ctx context.Context, spec dockerfile.BuildSpec, ref string, labels map[string]string) error {
	tarCtx, err := archive.TarWithOptions(spec.ContextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("tar build context %s: %w", spec.ContextDir, err)
	}
	defer tarCtx.Close()

	p.log.Info("building image", "ref", ref, "context", spec.ContextDir)
	resp, err := p.api.ImageBuild(ctx, tarCtx, build.ImageBuildOptions{
		Tags:       []string{ref},
		Dockerfile: "Dockerfile",
		Remove:     true,
		Labels:     labels,
	})
	if err != nil {
		return fmt.Errorf("build %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if err := drainStream(resp.Body); err != nil {
		return fmt.Errorf("build %s: %w", ref, err)
	}
	return nil
}

func (p *Publisher) push(ctx context.Context, ref string, creds registry.Credentials) error {
	auth, err := registrytypes.EncodeAuthConfig(registrytypes.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: creds.ServerAddress,
	})
	if err != nil {
		return fmt.Errorf("encode registry auth: %w", err)
	}

	p.log.Info("pushing image", "ref", ref)
	rc, err := p.api.ImagePush(ctx, ref, dimage.PushOptions{RegistryAuth: auth})
	if err != nil {
		return fmt.Errorf("push %s: %w", ref, err)
	}
	defer rc.Close()
	if err := drainStream(rc); err != nil {
		return fmt.Errorf("push %s: %w", ref, err)
	}
	return nil
}

// drainStream consumes a docker progress stream to completion. The daemon
// reports failures as in-band messages, not transport errors, so the stream
// must be scanned for them.
func drainStream(r io.Reader) error {
	dec := json.NewDecoder(r)
	for {
		var msg struct {
			Error string `json:"error"`
		}
		if err := dec.Decode(&msg); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if msg.Error != "" {
			return fmt.Errorf("%s", msg.Error)
		}
	}
}
