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
)

const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"
)

// EnvironmentProvider reads credentials from the environment snapshot in the
// resolve context. The session token is optional.
type EnvironmentProvider struct {
}

func NewEnvironmentProvider() *EnvironmentProvider {
	return &EnvironmentProvider{}
}

func (p *EnvironmentProvider) Name() string {
	return "environment"
}

func (p *EnvironmentProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	accessKey := rc.Env[EnvAccessKeyID]
	if accessKey == "" {
		return nil, NewNotFoundError("%s not set in environment", EnvAccessKeyID)
	}

	secretKey := rc.Env[EnvSecretAccessKey]
	if secretKey == "" {
		return nil, NewNotFoundError("%s set but %s missing from environment", EnvAccessKeyID, EnvSecretAccessKey)
	}

	return NewCredentials(accessKey, secretKey, rc.Env[EnvSessionToken]), nil
}
