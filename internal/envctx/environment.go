package envctx

import (
	"errors"
	"fmt"
)

var ErrUnknownNamespace = errors.New("unknown namespace")

// clusterContexts maps each recognized namespace to the cluster context the
// manifest is applied against. The three prod variants share one cluster.
var clusterContexts = map[string]string{
	"prod":         "prod",
	"prod-replica": "prod",
	"prod-worker":  "prod",
	"staging":      "staging",
}

// Environment is the per-run deployment context derived from the namespace
// and the tool settings.
type Environment struct {
	Namespace      string
	ClusterContext string
	AccountID      string
	Region         string
	Registry       string
}

// ClusterContext maps a namespace to its cluster context without pulling in
// registry settings. For read-only operations against the cluster.
func ClusterContext(namespace string) (string, error) {
	cc, ok := clusterContexts[namespace]
	if !ok {
		return "", fmt.Errorf("%w %q: must be one of prod, prod-replica, staging, prod-worker", ErrUnknownNamespace, namespace)
	}
	return cc, nil
}

// ResolveEnvironment validates the namespace against the recognized set and
// binds it to a cluster context and the registry account. The registry
// endpoint defaults to the account's ECR host unless the settings name a
// different registry outright.
func ResolveEnvironment(namespace string, s Settings) (Environment, error) {
	cc, err := ClusterContext(namespace)
	if err != nil {
		return Environment{}, err
	}
	if s.Registry.AccountID == "" {
		return Environment{}, errors.New("registry.account_id is not configured")
	}
	host := s.Registry.Host
	if host == "" {
		host = fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", s.Registry.AccountID, s.Registry.Region)
	}
	return Environment{
		Namespace:      namespace,
		ClusterContext: cc,
		AccountID:      s.Registry.AccountID,
		Region:         s.Registry.Region,
		Registry:       host,
	}, nil
}

// RegistryHost returns the registry endpoint images are pushed to.
func (e Environment) RegistryHost() string {
	return e.Registry
}
