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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

// SupportedProcessVersion is the only credential_process protocol version
// this provider accepts.
const SupportedProcessVersion = 1

// processOutput is the JSON object a credential_process command writes to
// stdout.
type processOutput struct {
	Version         int    `json:"Version"`
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
}

// ProcessProvider spawns the credential_process command configured on the
// requested config profile and parses its stdout. Exit status and stderr are
// reported on every failure path.
type ProcessProvider struct {
	run func(ctx context.Context, command string) (stdout []byte, stderr string, err error)
}

func NewProcessProvider() *ProcessProvider {
	return &ProcessProvider{run: runCommand}
}

func (p *ProcessProvider) Name() string {
	return "credential-process"
}

func (p *ProcessProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	path, err := rc.ConfigFile()
	if err != nil {
		return nil, err
	}

	store, err := profile.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	name := rc.ProfileName()
	prof, found := store.Profile(name)
	if !found {
		return nil, NewNotFoundError("profile %s not found in %s", name, path)
	}

	command, ok := prof.CredentialProcess()
	if !ok || command == "" {
		return nil, NewNotFoundError("profile %s in %s has no credential_process", name, path)
	}

	timer := prometheus.NewTimer(processDuration)
	stdout, stderr, err := p.run(ctx, command)
	timer.ObserveDuration()

	if err != nil {
		processError.Inc()
		return nil, &ProcessError{Command: command, Stderr: stderr, Err: err}
	}

	credentials, err := parseProcessOutput(stdout)
	if err != nil {
		processError.Inc()
		return nil, &ProcessError{Command: command, Stderr: stderr, Err: err}
	}

	log.WithFields(CredentialsFields(credentials, name)).Debugf("resolved credentials from credential_process")
	return credentials, nil
}

func parseProcessOutput(stdout []byte) (*Credentials, error) {
	var output processOutput
	if err := json.Unmarshal(stdout, &output); err != nil {
		return nil, fmt.Errorf("unparseable output: %s", err.Error())
	}

	if output.Version != SupportedProcessVersion {
		return nil, fmt.Errorf("unsupported version %d, expected %d", output.Version, SupportedProcessVersion)
	}

	credentials := NewCredentials(output.AccessKeyID, output.SecretAccessKey, output.SessionToken)
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	if output.Expiration != "" {
		expiry, err := time.Parse(time.RFC3339, output.Expiration)
		if err != nil {
			return nil, fmt.Errorf("unparseable Expiration: %s", err.Error())
		}
		credentials.Expiration = &expiry
	}

	return credentials, nil
}

// runCommand splits the configured command line on whitespace and runs it
// directly, without a shell, capturing both output streams.
func runCommand(ctx context.Context, command string) ([]byte, string, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, "", fmt.Errorf("empty command")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, stderr.String(), err
	}

	return stdout.Bytes(), stderr.String(), nil
}
