// Package appconfig resolves deployment sizing fields from a module's
// application config document. Values are carried as opaque strings: the
// document owner is responsible for producing well-formed quantities, and
// anything malformed flows through into the rendered manifest unchanged.
package appconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

const (
	DefaultCPULimit = "2000m"
	DefaultMemLimit = "4096Mi"
)

// FieldError reports a required field missing from the document.
type FieldError struct {
	Path string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("required field %q not found in application config", e.Path)
}

// Fields is the flat record of resolved configuration values.
type Fields struct {
	Port        string
	CPURequest  string
	MemRequest  string
	CPULimit    string
	MemLimit    string
	Instances   string
	MaxReplicas string
	MinReplicas string
}

// Document is a parsed application config file.
type Document struct {
	root map[string]any
	path string
}

// Load parses the document at path. A missing or unparseable file is the
// point where a bad config location finally surfaces.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read application config: %w", err)
	}
	var root map[string]any
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse application config %s: %w", path, err)
	}
	return &Document{root: root, path: path}, nil
}

// Lookup walks a dotted path through the document. A missing key, a nil
// value, or a literal "null" scalar all count as not found.
func (d *Document) Lookup(path string) (string, bool) {
	cur := any(d.root)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	if cur == nil {
		return "", false
	}
	s := fmt.Sprint(cur)
	if s == "null" {
		return "", false
	}
	return s, true
}

func (d *Document) require(path string) (string, error) {
	v, ok := d.Lookup(path)
	if !ok {
		return "", &FieldError{Path: path}
	}
	return v, nil
}

// Resolve reads the eight deployment fields for namespace. The two limit
// fields fall back to built-in defaults with a warning; everything else is
// mandatory.
func Resolve(d *Document, namespace string, log *slog.Logger) (*Fields, error) {
	f := &Fields{}
	var err error

	if f.Port, err = d.require("server.port"); err != nil {
		return nil, err
	}

	deploy := namespace + ".deployment."
	if f.CPURequest, err = d.require(deploy + "cpu"); err != nil {
		return nil, err
	}
	if f.MemRequest, err = d.require(deploy + "memory"); err != nil {
		return nil, err
	}
	if f.Instances, err = d.require(deploy + "instances"); err != nil {
		return nil, err
	}

	var ok bool
	if f.CPULimit, ok = d.Lookup(deploy + "cpuLimit"); !ok {
		f.CPULimit = DefaultCPULimit
		log.Warn("cpuLimit not set, using default", "namespace", namespace, "default", DefaultCPULimit)
	}
	if f.MemLimit, ok = d.Lookup(deploy + "memoryLimit"); !ok {
		f.MemLimit = DefaultMemLimit
		log.Warn("memoryLimit not set, using default", "namespace", namespace, "default", DefaultMemLimit)
	}

	scale := namespace + ".autoscaling."
	if f.MaxReplicas, err = d.require(scale + "maxReplicas"); err != nil {
		return nil, err
	}
	if f.MinReplicas, err = d.require(scale + "minReplicas"); err != nil {
		return nil, err
	}

	log.Info("resolved application config",
		"path", d.path,
		"port", f.Port,
		"cpu", f.CPURequest,
		"memory", f.MemRequest,
		"cpuLimit", f.CPULimit,
		"memoryLimit", f.MemLimit,
		"instances", f.Instances,
		"maxReplicas", f.MaxReplicas,
		"minReplicas", f.MinReplicas)
	return f, nil
}
