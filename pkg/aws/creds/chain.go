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

	log "github.com/sirupsen/logrus"
)

// Chain tries an ordered list of providers and returns the first success.
// When every provider fails the individual errors are aggregated so no
// failure is swallowed.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// NewDefaultChain builds the conventional precedence order: explicit static
// credentials, environment variables, shared credentials file profile,
// credential_process, container endpoint, instance metadata. Static is only
// included when credentials are supplied; remote providers only when their
// fetcher is.
func NewDefaultChain(static *Credentials, containerFetcher, metadataFetcher Fetcher) *Chain {
	var providers []Provider
	if static != nil {
		providers = append(providers, NewStaticProvider(static))
	}
	providers = append(providers,
		NewEnvironmentProvider(),
		NewSharedProfileProvider(),
		NewProcessProvider(),
	)
	if containerFetcher != nil {
		providers = append(providers, NewContainerProvider(containerFetcher))
	}
	if metadataFetcher != nil {
		providers = append(providers, NewInstanceMetadataProvider(metadataFetcher))
	}
	return NewChain(providers...)
}

func (c *Chain) Name() string {
	return "chain"
}

// Resolve consults each provider in precedence order. The first success
// short-circuits; providers after it are never invoked.
func (c *Chain) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	var failures []error
	for _, provider := range c.providers {
		credentials, err := provider.Resolve(ctx, rc)
		if err != nil {
			providerError.WithLabelValues(provider.Name()).Inc()
			log.WithField("credentials.provider", provider.Name()).Debugf("provider couldn't supply credentials: %s", err.Error())
			failures = append(failures, fmt.Errorf("%s: %s", provider.Name(), err.Error()))
			continue
		}

		if err := credentials.Validate(); err != nil {
			failures = append(failures, fmt.Errorf("%s: %s", provider.Name(), err.Error()))
			continue
		}

		log.WithFields(CredentialsFields(credentials, rc.ProfileName())).WithField("credentials.provider", provider.Name()).Debugf("resolved credentials")
		return credentials, nil
	}

	return nil, &ChainError{Errors: failures}
}
