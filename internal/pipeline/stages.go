package pipeline

import (
	"context"
	"log/slog"

	"github.com/kubeship/kubeship/internal/appconfig"
	"github.com/kubeship/kubeship/internal/dockerfile"
	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/image"
	"github.com/kubeship/kubeship/internal/language"
	"github.com/kubeship/kubeship/internal/manifest"
	"github.com/kubeship/kubeship/internal/render"
	"github.com/kubeship/kubeship/internal/util"
)

// ImagePublisher is the publishing side of the pipeline, satisfied by
// image.Publisher.
type ImagePublisher interface {
	Publish(ctx context.Context, spec dockerfile.BuildSpec, reg image.Registry, service, buildID, host string, labels map[string]string) (string, error)
}

// RegistryFactory opens a registry client for the run's environment.
// A factory rather than a client, so validation-only runs never touch AWS.
type RegistryFactory func(ctx context.Context, env envctx.Environment) (image.Registry, error)

// Applier applies a rendered manifest, satisfied by kubectl.CLI.
type Applier interface {
	Apply(ctx context.Context, manifestPath, namespace string) error
}

// ApplierFactory binds an Applier to a cluster context.
type ApplierFactory func(clusterContext string) Applier

// Validate checks the invocation options, binds the namespace to its
// cluster context, and records the module's git SHA when available. Always
// the first stage: everything after it may touch external systems.
func Validate(log *slog.Logger) Stage {
	return Stage{Name: "validate-arguments", Run: func(_ context.Context, st *State) error {
		if err := st.Opts.Validate(); err != nil {
			return err
		}
		st.Opts.Log(log)
		env, err := envctx.ResolveEnvironment(st.Opts.Namespace, st.Settings)
		if err != nil {
			return err
		}
		st.Env = env
		st.GitSHA = util.HeadShortSHA(st.ModuleDir())
		return nil
	}}
}

// DetectLanguage classifies the module by its marker files.
func DetectLanguage(log *slog.Logger) Stage {
	return Stage{Name: "detect-language", Run: func(_ context.Context, st *State) error {
		lang, err := language.Detect(st.ModuleDir())
		if err != nil {
			return err
		}
		st.Language = lang
		log.Info("detected language", "language", lang, "module", st.ModuleDir())
		return nil
	}}
}

// ResolveConfig loads the module's application config document and resolves
// the eight deployment fields for the namespace.
func ResolveConfig(log *slog.Logger) Stage {
	return Stage{Name: "resolve-config", Run: func(_ context.Context, st *State) error {
		doc, err := appconfig.Load(language.ConfigPath(st.Language, st.ModuleDir()))
		if err != nil {
			return err
		}
		fields, err := appconfig.Resolve(doc, st.Opts.Namespace, log)
		if err != nil {
			return err
		}
		st.Fields = fields
		return nil
	}}
}

// GenerateDockerfile writes the per-language build definition.
func GenerateDockerfile(eng *render.Engine) Stage {
	return Stage{Name: "generate-dockerfile", Run: func(_ context.Context, st *State) error {
		spec, err := dockerfile.Generate(eng, st.Language, st.ModuleDir(), st.Env, st.Fields.Port, st.Settings.Tracing.Collector)
		if err != nil {
			return err
		}
		st.BuildSpec = spec
		return nil
	}}
}

// PublishImage builds, tags, pushes, and cleans up the image.
func PublishImage(pub ImagePublisher, newRegistry RegistryFactory) Stage {
	return Stage{Name: "publish-image", Run: func(ctx context.Context, st *State) error {
		reg, err := newRegistry(ctx, st.Env)
		if err != nil {
			return err
		}
		labels := map[string]string{}
		if st.GitSHA != "" {
			labels["org.opencontainers.image.revision"] = st.GitSHA
		}
		ref, err := pub.Publish(ctx, st.BuildSpec, reg, st.Opts.ServiceName, st.Opts.BuildID, st.Env.RegistryHost(), labels)
		if err != nil {
			return err
		}
		st.Image = ref
		return nil
	}}
}

// RenderManifest selects the template and renders it to a fresh artifact.
// When the publish stage was skipped (render-only runs) the image reference
// is computed rather than taken from the publish result.
func RenderManifest(eng *render.Engine, log *slog.Logger) Stage {
	return Stage{Name: "render-manifest", Run: func(_ context.Context, st *State) error {
		if st.Image == "" {
			st.Image = st.Env.RegistryHost() + "/" + st.Opts.ServiceName + ":" + st.Opts.BuildID
		}
		st.Template = manifest.Select(st.Opts.ServiceName, st.Opts.Namespace)
		data := manifest.NewData(st.Opts, st.Env, st.Fields, st.Image, st.GitSHA)
		out, err := manifest.Render(eng, st.Settings.Templates.Dir, st.Settings.Output.Dir, st.Template, data)
		if err != nil {
			return err
		}
		st.Rendered = out
		log.Info("rendered manifest", "template", st.Template, "output", out)
		return nil
	}}
}

// ApplyManifest hands the rendered artifact to the cluster CLI.
func ApplyManifest(newApplier ApplierFactory) Stage {
	return Stage{Name: "apply-manifest", Run: func(ctx context.Context, st *State) error {
		return newApplier(st.Env.ClusterContext).Apply(ctx, st.Rendered, st.Opts.Namespace)
	}}
}
