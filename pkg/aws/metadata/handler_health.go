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
	"fmt"
	"net/http"
	"os"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

// healthHandler reports whether the config file the server resolves against
// can be located and parsed. Reads retry briefly to ride out atomic rewrites
// of the file.
type healthHandler struct {
	configPath string
}

func newHealthHandler(configPath string) *healthHandler {
	return &healthHandler{configPath: configPath}
}

func (h *healthHandler) Install(router *mux.Router) {
	router.Handle("/health", adapt(withMeter("health", h)))
}

func (h *healthHandler) Handle(ctx context.Context, w http.ResponseWriter, req *http.Request) (int, error) {
	timer := prometheus.NewTimer(handlerTimer.WithLabelValues("health"))
	defer timer.ObserveDuration()

	path := h.configPath
	if path == "" {
		var err error
		path, err = profile.ConfigPath(profile.SnapshotEnvironment(os.Environ()))
		if err != nil {
			return http.StatusInternalServerError, err
		}
	}

	op := func() error {
		_, err := profile.LoadConfig(path)
		return err
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = retryInterval

	if err := backoff.Retry(op, backoff.WithContext(strategy, ctx)); err != nil {
		return http.StatusInternalServerError, fmt.Errorf("config file unhealthy: %s", err.Error())
	}

	fmt.Fprint(w, "ok")
	return http.StatusOK, nil
}
