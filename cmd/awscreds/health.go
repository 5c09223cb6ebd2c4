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
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"
)

type healthCommand struct {
	logOptions

	serverAddress string
	timeout       time.Duration
}

func (cmd *healthCommand) Bind(parser parser) {
	cmd.logOptions.bind(parser)

	parser.Flag("server-address", "HTTP address of the credentials server").Default("http://localhost:3100").StringVar(&cmd.serverAddress)
	parser.Flag("timeout", "Timeout for health check").Default("1s").DurationVar(&cmd.timeout)
}

func (opts *healthCommand) Run() {
	opts.configureLogger()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	client := &http.Client{Timeout: opts.timeout}

	op := func() error {
		message, err := checkHealth(ctx, client, opts.serverAddress)
		if err != nil {
			log.Warnf("error checking health: %s", err.Error())
			return err
		}

		log.Infof("healthy: %s", message)

		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(backoff.NewConstantBackOff(100*time.Millisecond), ctx))

	if err != nil {
		log.Fatalf("error retrieving health: %s", err.Error())
	}
}

func checkHealth(ctx context.Context, client *http.Client, address string) (string, error) {
	req, err := http.NewRequest("GET", address+"/health", nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unhealthy: %s", string(body))
	}

	return string(body), nil
}
