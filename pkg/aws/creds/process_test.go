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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

func processContext(name string) *ResolveContext {
	return &ResolveContext{Env: profile.Environment{}, Profile: name, ConfigPath: "testdata/process_config"}
}

func TestProcessResolvesCredentialsFromCommandOutput(t *testing.T) {
	provider := NewProcessProvider()

	credentials, err := provider.Resolve(context.Background(), processContext(""))
	assert.NoError(t, err)
	assert.Equal(t, "AKIAPROCESS", credentials.AccessKeyID)
	assert.Equal(t, "process-secret", credentials.SecretAccessKey)
	assert.Equal(t, "process-token", credentials.SessionToken)

	expected := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NotNil(t, credentials.Expiration)
	assert.True(t, credentials.Expiration.Equal(expected))
}

func TestProcessRejectsUnsupportedVersion(t *testing.T) {
	provider := NewProcessProvider()

	_, err := provider.Resolve(context.Background(), processContext("wrong-version"))
	assert.Error(t, err)

	processErr, ok := err.(*ProcessError)
	assert.True(t, ok)
	assert.Contains(t, processErr.Error(), "unsupported version 2")
}

func TestProcessSurfacesStderrOnNonZeroExit(t *testing.T) {
	provider := NewProcessProvider()

	_, err := provider.Resolve(context.Background(), processContext("failing"))
	assert.Error(t, err)

	processErr, ok := err.(*ProcessError)
	assert.True(t, ok)
	assert.Contains(t, processErr.Stderr, "access denied by broker")
	assert.Contains(t, processErr.Error(), "access denied by broker")
}

func TestProcessFailsWhenProfileHasNoCommand(t *testing.T) {
	provider := NewProcessProvider()

	_, err := provider.Resolve(context.Background(), processContext("no-command"))
	assert.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestProcessRejectsUnparseableOutput(t *testing.T) {
	provider := &ProcessProvider{run: func(ctx context.Context, command string) ([]byte, string, error) {
		return []byte("not json"), "", nil
	}}

	_, err := provider.Resolve(context.Background(), processContext(""))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unparseable output"))
}

func TestProcessRejectsEmptyKeyMaterial(t *testing.T) {
	provider := &ProcessProvider{run: func(ctx context.Context, command string) ([]byte, string, error) {
		return []byte(`{"Version":1,"AccessKeyId":"","SecretAccessKey":""}`), "", nil
	}}

	_, err := provider.Resolve(context.Background(), processContext(""))
	assert.Error(t, err)
}
