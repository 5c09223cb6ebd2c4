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
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerProviderParsesEnvelope(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context) ([]byte, error) {
		return []byte(`{"AccessKeyId":"AKIAREMOTE","SecretAccessKey":"remote-secret","Token":"remote-token","Expiration":"2030-01-01T00:00:00Z"}`), nil
	})

	provider := NewContainerProvider(fetcher)
	credentials, err := provider.Resolve(context.Background(), emptyContext())

	assert.NoError(t, err)
	assert.Equal(t, "AKIAREMOTE", credentials.AccessKeyID)
	assert.Equal(t, "remote-token", credentials.SessionToken)
	assert.NotNil(t, credentials.Expiration)
}

func TestInstanceMetadataProviderAcceptsSessionTokenField(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context) ([]byte, error) {
		return []byte(`{"AccessKeyId":"AKIAREMOTE","SecretAccessKey":"remote-secret","SessionToken":"session-token"}`), nil
	})

	provider := NewInstanceMetadataProvider(fetcher)
	credentials, err := provider.Resolve(context.Background(), emptyContext())

	assert.NoError(t, err)
	assert.Equal(t, "session-token", credentials.SessionToken)
	assert.Nil(t, credentials.Expiration)
}

func TestRemoteProviderWrapsFetchFailures(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context) ([]byte, error) {
		return nil, fmt.Errorf("connection refused")
	})

	provider := NewContainerProvider(fetcher)
	_, err := provider.Resolve(context.Background(), emptyContext())

	assert.Error(t, err)
	networkErr, ok := err.(*NetworkError)
	assert.True(t, ok)
	assert.Equal(t, "container-endpoint", networkErr.Endpoint)
}

func TestRemoteProviderRejectsMalformedPayload(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context) ([]byte, error) {
		return []byte("<html>not credentials</html>"), nil
	})

	provider := NewInstanceMetadataProvider(fetcher)
	_, err := provider.Resolve(context.Background(), emptyContext())

	assert.Error(t, err)
	_, ok := err.(*NetworkError)
	assert.True(t, ok)
}

func TestRemoteProviderMakesSingleAttempt(t *testing.T) {
	var attempts int32
	fetcher := FetcherFunc(func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, fmt.Errorf("transient failure")
	})

	provider := NewContainerProvider(fetcher)
	provider.Resolve(context.Background(), emptyContext())

	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}
