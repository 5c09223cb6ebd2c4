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
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/uswitch/awscreds/pkg/aws/creds"
	"github.com/uswitch/awscreds/pkg/aws/metadata"
	"github.com/uswitch/awscreds/pkg/aws/profile"
	"github.com/uswitch/awscreds/pkg/aws/sts"
)

type serveCommand struct {
	logOptions
	telemetryOptions

	port             int
	configFile       string
	maxElapsedTime   time.Duration
	expiryBuffer     time.Duration
	sessionName      string
	instanceMetadata bool
}

func (cmd *serveCommand) Bind(parser parser) {
	cmd.logOptions.bind(parser)
	cmd.telemetryOptions.bind(parser)

	parser.Flag("port", "HTTP port").Default("3100").IntVar(&cmd.port)
	parser.Flag("config-file", "AWS config file path ( or empty to derive from environment )").Default("").StringVar(&cmd.configFile)
	parser.Flag("fetch-timeout", "Max time to retry fetching credentials per request").Default("10s").DurationVar(&cmd.maxElapsedTime)
	parser.Flag("expiry-buffer", "Refresh credentials this long before their expiry").Default("30s").DurationVar(&cmd.expiryBuffer)
	parser.Flag("session-name", "Session name for assumed roles").Default(sts.DefaultSessionName).StringVar(&cmd.sessionName)
	parser.Flag("instance-metadata", "Allow falling back to the EC2 instance metadata service").Default("true").BoolVar(&cmd.instanceMetadata)
}

func (opts *serveCommand) run() error {
	opts.configureLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := opts.telemetryOptions.start(ctx); err != nil {
		log.Errorf("error starting telemetry: %s", err.Error())
		return err
	}

	stopChan := make(chan os.Signal, 8)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	env := profile.SnapshotEnvironment(os.Environ())

	var metadataFetcher creds.Fetcher
	if opts.instanceMetadata {
		metadataFetcher = creds.NewInstanceMetadataFetcher("")
	}
	chain := creds.NewDefaultChain(nil, creds.NewContainerFetcher(env), metadataFetcher)

	assumeRole := sts.NewAssumeRoleProvider(sts.DefaultGateway(), opts.sessionName)
	resolver := creds.NewResolver(chain, assumeRole, creds.WithExpiryBuffer(opts.expiryBuffer))

	config := metadata.NewConfig(opts.port)
	config.ConfigPath = opts.configFile
	config.MaxElapsedTime = opts.maxElapsedTime

	server := metadata.NewWebServer(config, resolver)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorf("error running server: %s", err.Error())
			return err
		}
	case sig := <-stopChan:
		log.Infof("received signal (%s): starting server shutdown", sig.String())
		server.Stop(ctx)
	}
	log.Infoln("stopped")
	return nil
}

func (opts *serveCommand) Run() {
	if err := opts.run(); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}
