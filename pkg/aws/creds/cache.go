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

	"github.com/uswitch/awscreds/pkg/future"
)

// cachedEntry holds the last successful resolution. Only RefreshingCache
// mutates it, always by wholesale replacement.
type cachedEntry struct {
	credentials *Credentials
	fetchedAt   time.Time
}

// RefreshingCache wraps a provider with expiry-aware caching. Refresh is
// pull-driven: there is no background timer, the next caller after
// expiration pays for the refresh. Concurrent callers finding the cache
// empty or expired converge on a single in-flight resolve through a shared
// future, and all receive its result. Expired entries are never served; when
// a refresh fails and no valid entry exists the error propagates verbatim.
type RefreshingCache struct {
	provider Provider
	buffer   time.Duration
	now      func() time.Time

	mutex    sync.Mutex
	entry    *cachedEntry
	inflight *future.Future
}

func NewRefreshingCache(provider Provider, buffer time.Duration) *RefreshingCache {
	return &RefreshingCache{
		provider: provider,
		buffer:   buffer,
		now:      time.Now,
	}
}

func (c *RefreshingCache) Name() string {
	return c.provider.Name()
}

// Resolve returns cached credentials while they remain valid past the expiry
// buffer, refreshing through the wrapped provider otherwise. Readers of a
// valid entry return immediately and never wait on a concurrent refresh.
func (c *RefreshingCache) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	clock := c.now
	if rc.Now != nil {
		clock = rc.Now
	}

	c.mutex.Lock()
	if c.entry != nil && !c.entry.credentials.ExpiresWithin(clock(), c.buffer) {
		credentials := c.entry.credentials
		c.mutex.Unlock()
		cacheHit.Inc()
		return credentials, nil
	}

	if c.inflight == nil {
		c.inflight = c.refresh(rc, clock)
	}
	f := c.inflight
	c.mutex.Unlock()

	cacheMiss.Inc()

	val, err := f.Get(ctx)
	if err != nil {
		return nil, err
	}
	return val.(*Credentials), nil
}

// refresh starts a single-flight resolve. The resolve runs with a background
// context so a caller abandoning its wait doesn't cancel the fetch other
// callers share; the result is recorded for whoever asks next.
func (c *RefreshingCache) refresh(rc *ResolveContext, clock func() time.Time) *future.Future {
	return future.New(func() (interface{}, error) {
		credentials, err := c.provider.Resolve(context.Background(), rc)

		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.inflight = nil

		if err != nil {
			refreshError.Inc()
			log.WithField("credentials.profile", rc.ProfileName()).Errorf("error refreshing credentials: %s", err.Error())
			return nil, err
		}

		if err := credentials.Validate(); err != nil {
			refreshError.Inc()
			return nil, err
		}

		c.entry = &cachedEntry{credentials: credentials, fetchedAt: clock()}
		log.WithFields(CredentialsFields(credentials, rc.ProfileName())).Debugf("cached refreshed credentials")
		return credentials, nil
	})
}
