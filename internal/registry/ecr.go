// Package registry talks to the image registry: repository existence and
// authentication. The primary backend is ECR through the AWS SDK; for any
// other registry host the local docker login is used as-is.
package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
)

// api is the slice of the ECR client this package uses.
type api interface {
	GetAuthorizationToken(ctx context.Context, in *ecr.GetAuthorizationTokenInput, opts ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
	DescribeRepositories(ctx context.Context, in *ecr.DescribeRepositoriesInput, opts ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	CreateRepository(ctx context.Context, in *ecr.CreateRepositoryInput, opts ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
}

// Credentials are what the image publisher needs to push.
type Credentials struct {
	Username      string
	Password      string
	ServerAddress string
}

type Client struct {
	api  api
	host string
}

// New builds an ECR-backed registry client for the given account/region
// using the ambient AWS credential chain.
func New(ctx context.Context, region, host string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{api: ecr.NewFromConfig(cfg), host: host}, nil
}

// Credentials fetches and decodes an ECR authorization token.
func (c *Client) Credentials(ctx context.Context) (Credentials, error) {
	out, err := c.api.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return Credentials{}, fmt.Errorf("get authorization token: %w", err)
	}
	if len(out.AuthorizationData) == 0 || out.AuthorizationData[0].AuthorizationToken == nil {
		return Credentials{}, errors.New("empty authorization data from registry")
	}
	decoded, err := base64.StdEncoding.DecodeString(*out.AuthorizationData[0].AuthorizationToken)
	if err != nil {
		return Credentials{}, fmt.Errorf("decode authorization token: %w", err)
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credentials{}, errors.New("malformed authorization token")
	}
	return Credentials{Username: user, Password: pass, ServerAddress: c.host}, nil
}

// EnsureRepository creates the repository if it does not exist. The
// existence check first, then create, makes re-runs safe; a concurrent
// creation racing us is also treated as success.
func (c *Client) EnsureRepository(ctx context.Context, name string) (created bool, err error) {
	_, err = c.api.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err == nil {
		return false, nil
	}
	var notFound *ecrtypes.RepositoryNotFoundException
	if !errors.As(err, &notFound) {
		return false, fmt.Errorf("describe repository %s: %w", name, err)
	}

	_, err = c.api.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(name),
	})
	if err != nil {
		var exists *ecrtypes.RepositoryAlreadyExistsException
		if errors.As(err, &exists) {
			return false, nil
		}
		return false, fmt.Errorf("create repository %s: %w", name, err)
	}
	return true, nil
}
