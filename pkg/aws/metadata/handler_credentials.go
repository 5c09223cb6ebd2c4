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
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/cenkalti/backoff"

	"github.com/uswitch/awscreds/pkg/aws/creds"
	khttp "github.com/uswitch/awscreds/pkg/http"
	"github.com/uswitch/awscreds/pkg/statsd"
)

const timeLayout = "2006-01-02T15:04:05Z"

// credentialsPayload is the metadata-service style JSON envelope served to
// clients.
type credentialsPayload struct {
	Code            string
	Type            string
	AccessKeyId     string
	SecretAccessKey string
	Token           string
	Expiration      string
	LastUpdated     string
}

func newCredentialsPayload(credentials *creds.Credentials) *credentialsPayload {
	payload := &credentialsPayload{
		Code:            "Success",
		Type:            "AWS-HMAC",
		LastUpdated:     time.Now().Format(timeLayout),
		AccessKeyId:     credentials.AccessKeyID,
		SecretAccessKey: credentials.SecretAccessKey,
		Token:           credentials.SessionToken,
	}
	if credentials.Expiration != nil {
		payload.Expiration = credentials.Expiration.Format(timeLayout)
	}
	return payload
}

type credentialsHandler struct {
	resolver       CredentialsResolver
	maxElapsedTime time.Duration
}

func newCredentialsHandler(resolver CredentialsResolver, maxElapsedTime time.Duration) *credentialsHandler {
	return &credentialsHandler{resolver: resolver, maxElapsedTime: maxElapsedTime}
}

func (h *credentialsHandler) Install(router *mux.Router) {
	router.Handle("/v1/credentials/{profile}", adapt(withMeter("credentials", h)))
}

func (h *credentialsHandler) Handle(ctx context.Context, w http.ResponseWriter, req *http.Request) (int, error) {
	timer := prometheus.NewTimer(handlerTimer.WithLabelValues("credentials"))
	defer timer.ObserveDuration()

	timing := statsd.Client.NewTiming()
	defer timing.Send("handler.credentials")

	profileName := mux.Vars(req)["profile"]
	if profileName == "" {
		return http.StatusBadRequest, fmt.Errorf("no profile specified")
	}

	ctx, cancel := context.WithTimeout(ctx, h.maxElapsedTime)
	defer cancel()

	logger := log.WithFields(khttp.RequestFields(req)).WithField("credentials.profile", profileName)

	credsCh := make(chan *creds.Credentials, 1)
	op := func() error {
		credentials, err := h.resolver.ResolveProfile(ctx, profileName)
		if err != nil {
			logger.Errorf("error resolving credentials: %s", err.Error())
			return err
		}
		credsCh <- credentials
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = retryInterval
	err := backoff.Retry(op, backoff.WithContext(strategy, ctx))

	if err != nil {
		credentialFetchError.WithLabelValues("credentials").Inc()
		return http.StatusInternalServerError, fmt.Errorf("error fetching credentials: %s", err.Error())
	}

	credentials := <-credsCh

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newCredentialsPayload(credentials)); err != nil {
		credentialEncodeError.WithLabelValues("credentials").Inc()
		return http.StatusInternalServerError, fmt.Errorf("error encoding credentials: %s", err.Error())
	}

	success.WithLabelValues("credentials").Inc()
	return http.StatusOK, nil
}
