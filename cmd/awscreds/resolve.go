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
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/uswitch/awscreds/pkg/aws/creds"
	"github.com/uswitch/awscreds/pkg/aws/profile"
	"github.com/uswitch/awscreds/pkg/aws/sts"
)

type resolveCommand struct {
	logOptions

	profile     string
	sessionName string
	timeout     time.Duration
}

func (cmd *resolveCommand) Bind(parser parser) {
	cmd.logOptions.bind(parser)

	parser.Flag("profile", "Profile to resolve ( or empty for AWS_PROFILE / default )").Default("").StringVar(&cmd.profile)
	parser.Flag("session-name", "Session name for assumed roles").Default(sts.DefaultSessionName).StringVar(&cmd.sessionName)
	parser.Flag("timeout", "Timeout for resolution").Default("10s").DurationVar(&cmd.timeout)
}

// processPayload is the credential_process protocol document, letting other
// tools call `awscreds resolve` from their own config files.
type processPayload struct {
	Version         int    `json:"Version"`
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken,omitempty"`
	Expiration      string `json:"Expiration,omitempty"`
}

func (opts *resolveCommand) run() error {
	opts.configureLogger()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	env := profile.SnapshotEnvironment(os.Environ())
	chain := creds.NewDefaultChain(nil, creds.NewContainerFetcher(env), creds.NewInstanceMetadataFetcher(""))
	assumeRole := sts.NewAssumeRoleProvider(sts.DefaultGateway(), opts.sessionName)
	resolver := creds.NewResolver(chain, assumeRole)

	credentials, err := resolver.ResolveProfile(ctx, opts.profile)
	if err != nil {
		return err
	}

	payload := &processPayload{
		Version:         creds.SupportedProcessVersion,
		AccessKeyID:     credentials.AccessKeyID,
		SecretAccessKey: credentials.SecretAccessKey,
		SessionToken:    credentials.SessionToken,
	}
	if credentials.Expiration != nil {
		payload.Expiration = credentials.Expiration.Format(time.RFC3339)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func (opts *resolveCommand) Run() {
	if err := opts.run(); err != nil {
		log.Fatalf("error resolving credentials: %s", err.Error())
	}
}
