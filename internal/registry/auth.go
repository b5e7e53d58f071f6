package registry

import (
	"context"
	"io"
	"regexp"

	"github.com/docker/cli/cli/config"
)

// ecrHostPattern matches {account}.dkr.ecr.{region}.amazonaws.com.
var ecrHostPattern = regexp.MustCompile(`^\d+\.dkr\.ecr\.[a-z0-9-]+\.amazonaws\.com$`)

// IsECRHost reports whether host is an ECR endpoint.
func IsECRHost(host string) bool {
	return ecrHostPattern.MatchString(host)
}

// LocalCredentials reads the credentials that a prior `docker login` left
// in the local docker config for host. Used for non-ECR registries, where
// no token service is available to us.
func LocalCredentials(host string) (Credentials, error) {
	cf := config.LoadDefaultConfigFile(io.Discard)
	auth, err := cf.GetAuthConfig(host)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		Username:      auth.Username,
		Password:      auth.Password,
		ServerAddress: host,
	}, nil
}

// Local is the registry client for non-ECR hosts: credentials come from the
// docker config, and repositories are assumed to be created on first push,
// which is how most non-ECR registries behave.
type Local struct {
	host string
}

func NewLocal(host string) *Local {
	return &Local{host: host}
}

func (l *Local) Credentials(context.Context) (Credentials, error) {
	return LocalCredentials(l.host)
}

func (l *Local) EnsureRepository(context.Context, string) (bool, error) {
	return false, nil
}
