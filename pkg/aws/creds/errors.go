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
	"errors"
	"fmt"
	"strings"
)

// ErrCredentialChainTooLong indicates an assume-role source_profile chain
// exceeded the recursion bound, usually because two profiles reference each
// other.
var ErrCredentialChainTooLong = errors.New("credential profile chain too long")

// NotFoundError indicates a profile, section or required field was absent
// from the source a provider consulted.
type NotFoundError struct {
	msg string
}

func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string {
	return e.msg
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ProcessError indicates a credential_process command failed to spawn, exited
// non-zero, or produced output that couldn't be used. Stderr is captured so
// it's never silently dropped.
type ProcessError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("credential_process %q failed: %s: %s", e.Command, e.Err.Error(), strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("credential_process %q failed: %s", e.Command, e.Err.Error())
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NetworkError indicates a remote credential endpoint fetch failed or
// returned a payload that couldn't be decoded.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("error fetching credentials from %s: %s", e.Endpoint, e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RoleChainError indicates the source profile backing an assume-role profile
// couldn't be resolved.
type RoleChainError struct {
	Profile string
	Err     error
}

func (e *RoleChainError) Error() string {
	return fmt.Sprintf("error resolving source credentials for profile %s: %s", e.Profile, e.Err.Error())
}

func (e *RoleChainError) Unwrap() error {
	return e.Err
}

// ChainError aggregates the failures of every provider in a chain so
// operators can see which sources were attempted and why each failed.
type ChainError struct {
	Errors []error
}

func (e *ChainError) Error() string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("no credentials found in any source: %s", strings.Join(messages, "; "))
}
