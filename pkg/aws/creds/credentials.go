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
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultExpiryBuffer is how far ahead of actual expiration credentials are
// treated as already expired, so they're replaced before the signing layer
// can present a dead secret.
const DefaultExpiryBuffer = 30 * time.Second

// Credentials is an immutable set of AWS access credentials. A nil
// Expiration means the credentials are long-term and never refresh.
// Refreshed credentials replace the whole value, fields are never merged.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      *time.Time
}

// NewCredentials builds long-term credentials without an expiration.
func NewCredentials(accessKey, secretKey, token string) *Credentials {
	return &Credentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    token,
	}
}

// NewTemporaryCredentials builds credentials that expire.
func NewTemporaryCredentials(accessKey, secretKey, token string, expiry time.Time) *Credentials {
	return &Credentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    token,
		Expiration:      &expiry,
	}
}

// ExpiresWithin reports whether the credentials will have expired once
// buffer has elapsed from now. Credentials without an expiration never
// expire.
func (c *Credentials) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	if c.Expiration == nil {
		return false
	}
	return !now.Add(buffer).Before(*c.Expiration)
}

// Validate rejects credentials with an empty access key or secret. Empty
// values must surface as an error here rather than flow to a signing layer
// that would treat them as anonymous access.
func (c *Credentials) Validate() error {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return NewNotFoundError("resolved credentials have an empty access key or secret")
	}
	return nil
}

// CredentialsFields returns structured logging fields for issued credentials.
// The secret itself is never logged.
func CredentialsFields(credentials *Credentials, profile string) log.Fields {
	fields := log.Fields{
		"credentials.profile":    profile,
		"credentials.access.key": credentials.AccessKeyID,
	}
	if credentials.Expiration != nil {
		fields["credentials.expiration"] = credentials.Expiration.Format(time.RFC3339)
	}
	return fields
}
