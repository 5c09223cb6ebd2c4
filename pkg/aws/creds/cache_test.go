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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

type countingProvider struct {
	resolveCount int32
	delay        time.Duration
	fn           func() (*Credentials, error)
}

func (p *countingProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	atomic.AddInt32(&p.resolveCount, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.fn()
}

func (p *countingProvider) Name() string {
	return "counting"
}

func (p *countingProvider) count() int32 {
	return atomic.LoadInt32(&p.resolveCount)
}

func clockContext(now time.Time) *ResolveContext {
	return &ResolveContext{Env: profile.Environment{}, Now: func() time.Time { return now }}
}

func TestCacheResolvesThroughProviderWhenEmpty(t *testing.T) {
	provider := &countingProvider{fn: func() (*Credentials, error) {
		return NewCredentials("AKIACACHED", "secret", ""), nil
	}}
	cache := NewRefreshingCache(provider, DefaultExpiryBuffer)

	credentials, err := cache.Resolve(context.Background(), clockContext(time.Now()))
	assert.NoError(t, err)
	assert.Equal(t, "AKIACACHED", credentials.AccessKeyID)
	assert.Equal(t, int32(1), provider.count())
}

func TestCacheServesNonExpiringCredentialsForever(t *testing.T) {
	provider := &countingProvider{fn: func() (*Credentials, error) {
		return NewCredentials("AKIACACHED", "secret", ""), nil
	}}
	cache := NewRefreshingCache(provider, DefaultExpiryBuffer)

	now := time.Now()
	cache.Resolve(context.Background(), clockContext(now))
	cache.Resolve(context.Background(), clockContext(now.Add(100*24*time.Hour)))

	assert.Equal(t, int32(1), provider.count())
}

func TestCacheExpiryBoundary(t *testing.T) {
	now := time.Now()
	buffer := 30 * time.Second

	valid := NewTemporaryCredentials("AKIA", "secret", "", now.Add(buffer+time.Second))
	assert.False(t, valid.ExpiresWithin(now, buffer))

	expired := NewTemporaryCredentials("AKIA", "secret", "", now.Add(buffer-time.Second))
	assert.True(t, expired.ExpiresWithin(now, buffer))
}

func TestCacheRefreshesEntriesInsideExpiryBuffer(t *testing.T) {
	buffer := 30 * time.Second
	start := time.Now()
	expiry := start.Add(10 * time.Minute)

	provider := &countingProvider{fn: func() (*Credentials, error) {
		return NewTemporaryCredentials("AKIA", "secret", "", expiry), nil
	}}
	cache := NewRefreshingCache(provider, buffer)

	cache.Resolve(context.Background(), clockContext(start))
	assert.Equal(t, int32(1), provider.count())

	// still valid one second outside the buffer
	cache.Resolve(context.Background(), clockContext(expiry.Add(-buffer-time.Second)))
	assert.Equal(t, int32(1), provider.count())

	// one second inside the buffer the entry counts as expired
	cache.Resolve(context.Background(), clockContext(expiry.Add(-buffer+time.Second)))
	assert.Equal(t, int32(2), provider.count())
}

func TestCacheSingleFlightUnderConcurrency(t *testing.T) {
	defer leaktest.Check(t)()

	provider := &countingProvider{delay: 50 * time.Millisecond, fn: func() (*Credentials, error) {
		return NewCredentials("AKIASHARED", "secret", ""), nil
	}}
	cache := NewRefreshingCache(provider, DefaultExpiryBuffer)

	const callers = 20
	results := make([]*Credentials, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			credentials, err := cache.Resolve(context.Background(), clockContext(time.Now()))
			if err != nil {
				t.Error("unexpected error:", err.Error())
				return
			}
			results[i] = credentials
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.count(), "concurrent callers must converge on one resolve")
	for _, credentials := range results {
		assert.Same(t, results[0], credentials)
	}
}

func TestCacheSharesErrorsAcrossConcurrentCallers(t *testing.T) {
	defer leaktest.Check(t)()

	provider := &countingProvider{delay: 20 * time.Millisecond, fn: func() (*Credentials, error) {
		return nil, fmt.Errorf("source unavailable")
	}}
	cache := NewRefreshingCache(provider, DefaultExpiryBuffer)

	const callers = 10
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Resolve(context.Background(), clockContext(time.Now()))
			if err == nil || err.Error() != "source unavailable" {
				t.Error("expected shared error, was", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.count())
}

func TestCacheNeverServesExpiredEntries(t *testing.T) {
	start := time.Now()
	expiry := start.Add(time.Minute)

	failing := false
	provider := &countingProvider{fn: func() (*Credentials, error) {
		if failing {
			return nil, fmt.Errorf("refresh failed")
		}
		return NewTemporaryCredentials("AKIA", "secret", "", expiry), nil
	}}
	cache := NewRefreshingCache(provider, 30*time.Second)

	_, err := cache.Resolve(context.Background(), clockContext(start))
	assert.NoError(t, err)

	// after expiry the cached entry must not be served as a fallback
	failing = true
	_, err = cache.Resolve(context.Background(), clockContext(expiry.Add(time.Minute)))
	assert.Error(t, err)
	assert.Equal(t, "refresh failed", err.Error())
}

func TestCacheRefreshSurvivesAbandonedCaller(t *testing.T) {
	provider := &countingProvider{delay: 30 * time.Millisecond, fn: func() (*Credentials, error) {
		return NewCredentials("AKIASHARED", "secret", ""), nil
	}}
	cache := NewRefreshingCache(provider, DefaultExpiryBuffer)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	_, err := cache.Resolve(ctx, clockContext(time.Now()))
	cancel()
	assert.Equal(t, context.DeadlineExceeded, err)

	// the abandoned refresh completes and serves the next caller from cache
	time.Sleep(60 * time.Millisecond)
	credentials, err := cache.Resolve(context.Background(), clockContext(time.Now()))
	assert.NoError(t, err)
	assert.Equal(t, "AKIASHARED", credentials.AccessKeyID)
	assert.Equal(t, int32(1), provider.count())
}
