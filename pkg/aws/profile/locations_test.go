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
package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPathDefaultsUnderHome(t *testing.T) {
	env := Environment{"HOME": "/home/user"}

	path, err := ConfigPath(env)
	assert.NoError(t, err)
	assert.Equal(t, "/home/user/.aws/config", path)
}

func TestConfigPathHonoursOverride(t *testing.T) {
	env := Environment{"HOME": "/home/user", EnvConfigFile: "/etc/aws/config"}

	path, err := ConfigPath(env)
	assert.NoError(t, err)
	assert.Equal(t, "/etc/aws/config", path)
}

func TestCredentialsPathDefaultsUnderHome(t *testing.T) {
	env := Environment{"HOME": "/home/user"}

	path, err := CredentialsPath(env)
	assert.NoError(t, err)
	assert.Equal(t, "/home/user/.aws/credentials", path)
}

func TestCredentialsPathHonoursOverride(t *testing.T) {
	env := Environment{EnvSharedCredentialsFile: "/tmp/creds"}

	path, err := CredentialsPath(env)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/creds", path)
}

func TestPathFailsWithoutHomeOrOverride(t *testing.T) {
	_, err := ConfigPath(Environment{})
	assert.Error(t, err)
}

func TestProfileNamePrecedence(t *testing.T) {
	env := Environment{EnvProfile: "from-env"}

	assert.Equal(t, "requested", ProfileName(env, "requested"))
	assert.Equal(t, "from-env", ProfileName(env, ""))
	assert.Equal(t, "default", ProfileName(Environment{}, ""))
}

func TestSnapshotEnvironment(t *testing.T) {
	env := SnapshotEnvironment([]string{"HOME=/home/user", "AWS_PROFILE=foo", "malformed"})

	assert.Equal(t, "/home/user", env["HOME"])
	assert.Equal(t, "foo", env[EnvProfile])
	_, ok := env["malformed"]
	assert.False(t, ok)
}
