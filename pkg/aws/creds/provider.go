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
	"os"
	"time"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

// Provider is a single source of credentials. Providers are stateless with
// respect to caching and safe to invoke repeatedly; expiry-aware caching is
// layered on top with RefreshingCache.
type Provider interface {
	// Resolve returns credentials or an error describing why this source
	// couldn't supply them. It never returns empty credentials.
	Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error)
	// Name identifies the provider in logs and aggregated chain errors.
	Name() string
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context, rc *ResolveContext) (*Credentials, error)
}

func (p *ProviderFunc) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	return p.Fn(ctx, rc)
}

func (p *ProviderFunc) Name() string {
	return p.ProviderName
}

// ResolveContext carries the externally supplied hints a resolution uses: an
// environment snapshot, optional profile and file path overrides, and the
// clock. A fresh context is built per resolution so nothing is cached as
// process-wide mutable state.
type ResolveContext struct {
	Env             profile.Environment
	Profile         string
	ConfigPath      string
	CredentialsPath string
	Now             func() time.Time
}

// NewResolveContext snapshots the current process environment.
func NewResolveContext() *ResolveContext {
	return &ResolveContext{
		Env: profile.SnapshotEnvironment(os.Environ()),
		Now: time.Now,
	}
}

// ProfileName returns the effective profile for this resolution.
func (rc *ResolveContext) ProfileName() string {
	return profile.ProfileName(rc.Env, rc.Profile)
}

// ConfigFile returns the config file path, honouring the context override.
func (rc *ResolveContext) ConfigFile() (string, error) {
	if rc.ConfigPath != "" {
		return rc.ConfigPath, nil
	}
	return profile.ConfigPath(rc.Env)
}

// CredentialsFile returns the shared credentials file path, honouring the
// context override.
func (rc *ResolveContext) CredentialsFile() (string, error) {
	if rc.CredentialsPath != "" {
		return rc.CredentialsPath, nil
	}
	return profile.CredentialsPath(rc.Env)
}
