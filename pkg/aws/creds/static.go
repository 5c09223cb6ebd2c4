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
	"context"
)

// StaticProvider serves credentials fixed at construction time. It sits
// first in a chain when a caller supplies explicit credentials.
type StaticProvider struct {
	credentials *Credentials
}

func NewStaticProvider(credentials *Credentials) *StaticProvider {
	return &StaticProvider{credentials: credentials}
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	if p.credentials == nil {
		return nil, NewNotFoundError("no static credentials configured")
	}
	if err := p.credentials.Validate(); err != nil {
		return nil, err
	}
	return p.credentials, nil
}
