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
	"fmt"
	"path/filepath"
	"strings"
)

const (
	EnvConfigFile            = "AWS_CONFIG_FILE"
	EnvSharedCredentialsFile = "AWS_SHARED_CREDENTIALS_FILE"
	EnvProfile               = "AWS_PROFILE"
	envHome                  = "HOME"
)

// Environment is a point-in-time snapshot of process environment variables.
// File locations are computed from a snapshot rather than read ambiently so
// tests can substitute one deterministically.
type Environment map[string]string

// SnapshotEnvironment captures the given "key=value" pairs, typically
// os.Environ().
func SnapshotEnvironment(pairs []string) Environment {
	env := Environment{}
	for _, pair := range pairs {
		idx := strings.Index(pair, "=")
		if idx < 0 {
			continue
		}
		env[pair[:idx]] = pair[idx+1:]
	}
	return env
}

// ConfigPath returns the AWS config file location: AWS_CONFIG_FILE when set,
// otherwise ~/.aws/config.
func ConfigPath(env Environment) (string, error) {
	return location(env, EnvConfigFile, "config")
}

// CredentialsPath returns the shared credentials file location:
// AWS_SHARED_CREDENTIALS_FILE when set, otherwise ~/.aws/credentials.
func CredentialsPath(env Environment) (string, error) {
	return location(env, EnvSharedCredentialsFile, "credentials")
}

// ProfileName returns the requested profile, falling back to AWS_PROFILE and
// then the default profile name.
func ProfileName(env Environment, requested string) string {
	if requested != "" {
		return requested
	}
	if name, ok := env[EnvProfile]; ok && name != "" {
		return name
	}
	return DefaultName
}

func location(env Environment, override, filename string) (string, error) {
	if path, ok := env[override]; ok && path != "" {
		return path, nil
	}
	home, ok := env[envHome]
	if !ok || home == "" {
		return "", fmt.Errorf("couldn't determine home directory: %s unset and no %s override", envHome, override)
	}
	return filepath.Join(home, ".aws", filename), nil
}
