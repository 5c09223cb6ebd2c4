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

	"github.com/uswitch/awscreds/pkg/aws/profile"
)

// SharedProfileProvider reads static keys for the requested profile from the
// shared credentials file. Both key and secret must be present.
type SharedProfileProvider struct {
}

func NewSharedProfileProvider() *SharedProfileProvider {
	return &SharedProfileProvider{}
}

func (p *SharedProfileProvider) Name() string {
	return "shared-credentials-file"
}

func (p *SharedProfileProvider) Resolve(ctx context.Context, rc *ResolveContext) (*Credentials, error) {
	path, err := rc.CredentialsFile()
	if err != nil {
		return nil, err
	}

	store, err := profile.LoadCredentials(path)
	if err != nil {
		return nil, err
	}

	name := rc.ProfileName()
	prof, found := store.Profile(name)
	if !found {
		return nil, NewNotFoundError("profile %s not found in %s", name, path)
	}

	return credentialsFromProfile(prof, path)
}

// credentialsFromProfile builds static credentials from a profile's key
// material, failing when either required field is absent.
func credentialsFromProfile(prof *profile.Profile, path string) (*Credentials, error) {
	accessKey, ok := prof.AccessKeyID()
	if !ok || accessKey == "" {
		return nil, NewNotFoundError("profile %s in %s has no aws_access_key_id", prof.Name(), path)
	}
	secretKey, ok := prof.SecretAccessKey()
	if !ok || secretKey == "" {
		return nil, NewNotFoundError("profile %s in %s has no aws_secret_access_key", prof.Name(), path)
	}
	token, _ := prof.SessionToken()

	return NewCredentials(accessKey, secretKey, token), nil
}
