// Package manifest selects the deployment template for a run and renders
// it into a fresh output artifact. The template source is never modified:
// re-running produces a new artifact instead of re-substituting in place.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kubeship/kubeship/internal/appconfig"
	"github.com/kubeship/kubeship/internal/envctx"
	"github.com/kubeship/kubeship/internal/render"
	"github.com/kubeship/kubeship/internal/util"
)

// Data carries every value a deployment template may reference.
type Data struct {
	ServiceName string
	Image       string
	Namespace   string
	AccountID   string
	Port        string
	CPURequest  string
	MemRequest  string
	CPULimit    string
	MemLimit    string
	Instances   string
	MaxReplicas string
	MinReplicas string
	GitSHA      string
}

// NewData assembles template data from the resolved run state.
func NewData(opts envctx.Options, env envctx.Environment, fields *appconfig.Fields, image, gitSHA string) Data {
	return Data{
		ServiceName: opts.ServiceName,
		Image:       image,
		Namespace:   env.Namespace,
		AccountID:   env.AccountID,
		Port:        fields.Port,
		CPURequest:  fields.CPURequest,
		MemRequest:  fields.MemRequest,
		CPULimit:    fields.CPULimit,
		MemLimit:    fields.MemLimit,
		Instances:   fields.Instances,
		MaxReplicas: fields.MaxReplicas,
		MinReplicas: fields.MinReplicas,
		GitSHA:      gitSHA,
	}
}

// Select returns the template filename for the service/namespace pair. The
// api service has one template per environment; everything else shares the
// generic deployment template.
func Select(service, namespace string) string {
	if service == "api" {
		return namespace + "-api.yaml"
	}
	return "deployment.yaml"
}

// Render reads the named template from templatesDir and writes the rendered
// manifest into outputDir, suffixed with a content fingerprint so distinct
// runs never clobber each other. Returns the output path.
func Render(eng *render.Engine, templatesDir, outputDir, name string, data Data) (string, error) {
	b, err := eng.RenderFile(filepath.Join(templatesDir, name), data)
	if err != nil {
		return "", fmt.Errorf("render manifest %s: %w", name, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(outputDir, fmt.Sprintf("%s-%s-%s.yaml", data.ServiceName, data.Namespace, util.ShortFingerprint(b)))
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return "", fmt.Errorf("write rendered manifest: %w", err)
	}
	return out, nil
}
