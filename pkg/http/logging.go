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
package http

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// RequestFields returns structured logging fields describing a request.
func RequestFields(req *http.Request) log.Fields {
	return log.Fields{
		"req.method": req.Method,
		"req.path":   req.URL.Path,
		"req.remote": req.RemoteAddr,
	}
}

// LoggingHandler logs each request at debug with its duration.
func LoggingHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		started := time.Now()
		handler.ServeHTTP(w, req)
		log.WithFields(RequestFields(req)).WithField("req.duration", time.Since(started).String()).Debugf("processed request")
	})
}
