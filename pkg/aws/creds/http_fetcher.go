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
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

const (
	EnvContainerCredentialsRelativeURI = "AWS_CONTAINER_CREDENTIALS_RELATIVE_URI"
	EnvContainerCredentialsFullURI     = "AWS_CONTAINER_CREDENTIALS_FULL_URI"

	containerCredentialsHost = "http://169.254.170.2"
	instanceMetadataRolePath = "http://169.254.169.254/latest/meta-data/iam/security-credentials/"

	remoteFetchTimeout = time.Second * 2
)

var remoteClient = &http.Client{Timeout: remoteFetchTimeout}

// NewContainerFetcher builds a Fetcher for the container credentials
// endpoint from the environment snapshot. Returns nil when neither the
// relative nor the full URI variable is set.
func NewContainerFetcher(env profile.Environment) Fetcher {
	if uri := env[EnvContainerCredentialsFullURI]; uri != "" {
		return FetcherFunc(func(ctx context.Context) ([]byte, error) {
			return httpGet(ctx, uri)
		})
	}
	if path := env[EnvContainerCredentialsRelativeURI]; path != "" {
		uri := containerCredentialsHost + path
		return FetcherFunc(func(ctx context.Context) ([]byte, error) {
			return httpGet(ctx, uri)
		})
	}
	return nil
}

// NewInstanceMetadataFetcher builds a Fetcher for the EC2 instance metadata
// service. baseURL overrides the well-known address, used by tests; pass ""
// for the real service. The fetch is two requests: list the instance role
// name, then retrieve its credentials document.
func NewInstanceMetadataFetcher(baseURL string) Fetcher {
	if baseURL == "" {
		baseURL = instanceMetadataRolePath
	}
	return FetcherFunc(func(ctx context.Context) ([]byte, error) {
		listing, err := httpGet(ctx, baseURL)
		if err != nil {
			return nil, err
		}

		role := strings.TrimSpace(strings.SplitN(string(listing), "\n", 2)[0])
		if role == "" {
			return nil, fmt.Errorf("instance has no associated role")
		}

		return httpGet(ctx, baseURL+role)
	})
}

func httpGet(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequest("GET", uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := remoteClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, uri)
	}

	return ioutil.ReadAll(resp.Body)
}
