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
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

// Resolver is the subsystem's upward interface: it resolves credentials for
// a profile hint through a provider chain, recursing into the assume-role
// provider when the config profile declares role_arn, and keeps one
// refreshing cache per profile so concurrent callers share fetches.
type Resolver struct {
	chain      Provider
	assumeRole Provider
	buffer     time.Duration
	newContext func() *ResolveContext

	mutex  sync.Mutex
	caches map[string]*RefreshingCache
}

// ResolverOption adjusts Resolver construction.
type ResolverOption func(*Resolver)

// WithExpiryBuffer overrides the default expiry buffer.
func WithExpiryBuffer(buffer time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.buffer = buffer
	}
}

// WithContextFactory overrides how per-resolution contexts are built, used
// by tests to pin environment snapshots and clocks.
func WithContextFactory(f func() *ResolveContext) ResolverOption {
	return func(r *Resolver) {
		r.newContext = f
	}
}

// NewResolver builds a resolver over the given chain. assumeRole may be nil
// when no STS collaborator is available; role_arn profiles then fail through
// the chain like any other.
func NewResolver(chain, assumeRole Provider, options ...ResolverOption) *Resolver {
	r := &Resolver{
		chain:      chain,
		assumeRole: assumeRole,
		buffer:     DefaultExpiryBuffer,
		newContext: NewResolveContext,
		caches:     map[string]*RefreshingCache{},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// ResolveProfile returns valid credentials for the profile hint, which may
// be empty to mean the default profile.
func (r *Resolver) ResolveProfile(ctx context.Context, profileHint string) (*Credentials, error) {
	rc := r.newContext()
	rc.Profile = profileHint
	return r.cacheFor(rc.ProfileName()).Resolve(ctx, rc)
}

func (r *Resolver) cacheFor(name string) *RefreshingCache {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if cache, found := r.caches[name]; found {
		return cache
	}

	cache := NewRefreshingCache(&ProviderFunc{ProviderName: "resolver", Fn: r.resolve}, r.buffer)
	r.caches[name] = cache
	return cache
}

func (r *Resolver) resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	if r.assumeRole != nil && r.declaresRole(rc) {
		return r.assumeRole.Resolve(ctx, rc)
	}
	return r.chain.Resolve(ctx, rc)
}

// declaresRole reports whether the config profile carries role_arn. A
// missing or malformed config file doesn't declare one; the chain decides
// what that means.
func (r *Resolver) declaresRole(rc *ResolveContext) bool {
	path, err := rc.ConfigFile()
	if err != nil {
		return false
	}

	store, err := profile.LoadConfig(path)
	if err != nil {
		log.WithField("credentials.profile", rc.ProfileName()).Debugf("couldn't read config file: %s", err.Error())
		return false
	}

	prof, found := store.Profile(rc.ProfileName())
	if !found {
		return false
	}

	_, ok := prof.RoleARN()
	return ok
}
