// Copyright 2017 uSwitch
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package creds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Fetcher is the abstract transport to a remote credential source: the
// container credentials endpoint or the instance metadata service. A single
// fetch either succeeds or fails; retries are the caller's responsibility.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// remoteOutput is the JSON credentials envelope both remote endpoints serve.
// The metadata service names the session token "Token", the container
// endpoint uses "SessionToken"; both are accepted.
type remoteOutput struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Token           string `json:"Token"`
	Expiration      string `json:"Expiration"`
}

// ContainerProvider resolves credentials from the container credentials
// endpoint through an injected Fetcher.
type ContainerProvider struct {
	fetcher Fetcher
}

func NewContainerProvider(fetcher Fetcher) *ContainerProvider {
	return &ContainerProvider{fetcher: fetcher}
}

func (p *ContainerProvider) Name() string {
	return "container-endpoint"
}

func (p *ContainerProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	return fetchRemote(ctx, p.fetcher, p.Name())
}

// InstanceMetadataProvider resolves credentials from the EC2 instance
// metadata service through an injected Fetcher.
type InstanceMetadataProvider struct {
	fetcher Fetcher
}

func NewInstanceMetadataProvider(fetcher Fetcher) *InstanceMetadataProvider {
	return &InstanceMetadataProvider{fetcher: fetcher}
}

func (p *InstanceMetadataProvider) Name() string {
	return "instance-metadata"
}

func (p *InstanceMetadataProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	return fetchRemote(ctx, p.fetcher, p.Name())
}

func fetchRemote(ctx context.Context, fetcher Fetcher, endpoint string) (*Credentials, error) {
	if fetcher == nil {
		return nil, NewNotFoundError("no %s fetcher configured", endpoint)
	}

	body, err := fetcher.Fetch(ctx)
	if err != nil {
		remoteFetchError.WithLabelValues(endpoint).Inc()
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}

	credentials, err := parseRemoteOutput(body)
	if err != nil {
		remoteFetchError.WithLabelValues(endpoint).Inc()
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}

	return credentials, nil
}

func parseRemoteOutput(body []byte) (*Credentials, error) {
	var output remoteOutput
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, fmt.Errorf("unparseable credentials payload: %s", err.Error())
	}

	token := output.SessionToken
	if token == "" {
		token = output.Token
	}

	credentials := NewCredentials(output.AccessKeyID, output.SecretAccessKey, token)
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	if output.Expiration != "" {
		expiry, err := time.Parse(time.RFC3339, output.Expiration)
		if err != nil {
			return nil, fmt.Errorf("unparseable Expiration: %s", err.Error())
		}
		credentials.Expiration = &expiry
	}

	return credentials, nil
}
