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
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/uswitch/awscreds/pkg/aws/creds"
	khttp "github.com/uswitch/awscreds/pkg/http"
)

// CredentialsResolver is the upward interface the server exposes over HTTP:
// profile hint in, valid credentials or a diagnostic error out.
type CredentialsResolver interface {
	ResolveProfile(ctx context.Context, profileHint string) (*creds.Credentials, error)
}

type Server struct {
	cfg      *ServerConfig
	resolver CredentialsResolver
	mutex    sync.Mutex
	server   *http.Server
}

type ServerConfig struct {
	ListenPort     int
	ConfigPath     string
	MaxElapsedTime time.Duration
}

func NewConfig(port int) *ServerConfig {
	return &ServerConfig{
		ListenPort:     port,
		MaxElapsedTime: time.Second * 10,
	}
}

func NewWebServer(config *ServerConfig, resolver CredentialsResolver) *Server {
	return &Server{cfg: config, resolver: resolver}
}

func (s *Server) listenAddress() string {
	return fmt.Sprintf(":%d", s.cfg.ListenPort)
}

func (s *Server) Serve() error {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "pong") }))

	health := newHealthHandler(s.cfg.ConfigPath)
	health.Install(router)

	credentials := newCredentialsHandler(s.resolver, s.cfg.MaxElapsedTime)
	credentials.Install(router)

	s.mutex.Lock()
	s.server = &http.Server{Addr: s.listenAddress(), Handler: khttp.LoggingHandler(router)}
	s.mutex.Unlock()

	log.Infof("listening %s", s.listenAddress())

	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.server == nil {
		return
	}

	log.Infoln("starting server shutdown")
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	s.server.Shutdown(c)
	log.Infoln("gracefully shutdown server")
}
