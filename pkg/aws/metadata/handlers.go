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
	"time"

	log "github.com/sirupsen/logrus"

	khttp "github.com/uswitch/awscreds/pkg/http"
)

// interface for request handlers
type handler interface {
	Handle(ctx context.Context, w http.ResponseWriter, req *http.Request) (int, error)
}

const (
	handlerMaxDuration = time.Second * 5
	retryInterval      = time.Millisecond * 5
)

// adapts between handler and http.Handler
type handlerAdapter struct {
	h handler
}

func (a *handlerAdapter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), handlerMaxDuration)
	defer cancel()

	status, err := a.h.Handle(ctx, w, req)

	if err != nil {
		log.WithFields(khttp.RequestFields(req)).WithField("status", status).Errorf("error processing request: %s", err.Error())
		http.Error(w, err.Error(), status)
	}
}

func adapt(h handler) *handlerAdapter {
	return &handlerAdapter{h: h}
}

// records response statuses per handler
type metricHandler struct {
	name string
	h    handler
}

func withMeter(name string, h handler) handler {
	return &metricHandler{
		name: name,
		h:    h,
	}
}

func (m *metricHandler) Handle(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	status, err := m.h.Handle(ctx, w, r)
	responses.WithLabelValues(m.name, fmt.Sprintf("%d", status)).Inc()
	return status, err
}
