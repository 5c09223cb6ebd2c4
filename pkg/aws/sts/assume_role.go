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
package sts

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"github.com/uswitch/awscreds/pkg/aws/creds"
	"github.com/uswitch/awscreds/pkg/aws/profile"
	"github.com/uswitch/awscreds/pkg/future"
)

const (
	DefaultPurgeInterval   = 1 * time.Minute
	DefaultSessionDuration = 15 * time.Minute
	DefaultSessionCacheTTL = 10 * time.Minute
	DefaultSessionName     = "awscreds"

	// MaxProfileChainDepth bounds source_profile recursion so mutually
	// referencing profiles fail instead of looping.
	MaxProfileChainDepth = 5
)

// AssumeRoleError indicates the STS exchange itself failed after the source
// credentials resolved successfully.
type AssumeRoleError struct {
	ARN string
	Err error
}

func (e *AssumeRoleError) Error() string {
	return fmt.Sprintf("error assuming role %s: %s", e.ARN, e.Err.Error())
}

func (e *AssumeRoleError) Unwrap() error {
	return e.Err
}

// AssumeRoleProvider resolves config profiles that declare role_arn. The
// source profile resolves first, recursively when it declares a role of its
// own, and its credentials authenticate the STS exchange. Issued sessions
// are cached per role identity, with concurrent requests for the same
// identity sharing one in-flight call.
type AssumeRoleProvider struct {
	gateway     STSGateway
	sessionName string
	duration    time.Duration
	sessions    *cache.Cache
}

func NewAssumeRoleProvider(gateway STSGateway, sessionName string) *AssumeRoleProvider {
	if sessionName == "" {
		sessionName = DefaultSessionName
	}
	return &AssumeRoleProvider{
		gateway:     gateway,
		sessionName: sessionName,
		duration:    DefaultSessionDuration,
		sessions:    cache.New(DefaultSessionCacheTTL, DefaultPurgeInterval),
	}
}

func (p *AssumeRoleProvider) Name() string {
	return "assume-role"
}

func (p *AssumeRoleProvider) Resolve(ctx context.Context, rc *creds.ResolveContext) (*creds.Credentials, error) {
	path, err := rc.ConfigFile()
	if err != nil {
		return nil, err
	}

	store, err := profile.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return p.resolveProfile(ctx, rc, store, rc.ProfileName(), 0)
}

func (p *AssumeRoleProvider) resolveProfile(ctx context.Context, rc *creds.ResolveContext, store *profile.Store, name string, depth int) (*creds.Credentials, error) {
	if depth >= MaxProfileChainDepth {
		return nil, creds.ErrCredentialChainTooLong
	}

	prof, found := store.Profile(name)
	if !found {
		return p.staticCredentials(rc, name)
	}

	arn, hasRole := prof.RoleARN()
	if !hasRole {
		if credentials, err := credentialsFromConfigProfile(prof); err == nil {
			return credentials, nil
		}
		return p.staticCredentials(rc, name)
	}

	source, ok := prof.SourceProfile()
	if !ok {
		return nil, &creds.RoleChainError{Profile: name, Err: fmt.Errorf("role_arn set but source_profile missing")}
	}

	base, err := p.resolveProfile(ctx, rc, store, source, depth+1)
	if err != nil {
		if err == creds.ErrCredentialChainTooLong {
			return nil, err
		}
		return nil, &creds.RoleChainError{Profile: name, Err: err}
	}

	sessionName := p.sessionName
	if configured, ok := prof.RoleSessionName(); ok {
		sessionName = configured
	}
	externalID, _ := prof.ExternalID()

	identity := &RoleIdentity{ARN: arn, SessionName: sessionName, ExternalID: externalID}
	return p.assume(ctx, base, identity)
}

// staticCredentials resolves a terminal chain link from the shared
// credentials file.
func (p *AssumeRoleProvider) staticCredentials(rc *creds.ResolveContext, name string) (*creds.Credentials, error) {
	path, err := rc.CredentialsFile()
	if err != nil {
		return nil, err
	}

	store, err := profile.LoadCredentials(path)
	if err != nil {
		return nil, err
	}

	prof, found := store.Profile(name)
	if !found {
		return nil, creds.NewNotFoundError("profile %s not found in config or credentials file", name)
	}

	return credentialsFromConfigProfile(prof)
}

func credentialsFromConfigProfile(prof *profile.Profile) (*creds.Credentials, error) {
	accessKey, ok := prof.AccessKeyID()
	if !ok || accessKey == "" {
		return nil, creds.NewNotFoundError("profile %s has no aws_access_key_id", prof.Name())
	}
	secretKey, ok := prof.SecretAccessKey()
	if !ok || secretKey == "" {
		return nil, creds.NewNotFoundError("profile %s has no aws_secret_access_key", prof.Name())
	}
	token, _ := prof.SessionToken()

	return creds.NewCredentials(accessKey, secretKey, token), nil
}

// assume performs the exchange through the session cache. Sessions store
// futures so concurrent callers for the same identity converge on one STS
// call.
func (p *AssumeRoleProvider) assume(ctx context.Context, base *creds.Credentials, identity *RoleIdentity) (*creds.Credentials, error) {
	key := identity.String()

	if item, found := p.sessions.Get(key); found {
		f := item.(*future.Future)
		val, err := f.Get(ctx)
		if err == nil {
			credentials := val.(*creds.Credentials)
			if !credentials.ExpiresWithin(time.Now(), creds.DefaultExpiryBuffer) {
				sessionCacheHit.Inc()
				return credentials, nil
			}
		}
		p.sessions.Delete(key)
	}

	sessionCacheMiss.Inc()

	issue := func() (interface{}, error) {
		credentials, err := p.gateway.Issue(context.Background(), base, identity, p.duration)
		if err != nil {
			errorIssuing.Inc()
			log.WithFields(identity.LogFields()).Errorf("error requesting credentials: %s", err.Error())
			return nil, err
		}

		log.WithFields(identity.LogFields()).Debugf("assumed role")
		return credentials, nil
	}
	f := future.New(issue)
	p.sessions.Set(key, f, cache.DefaultExpiration)
	sessionCacheSize.Set(float64(p.sessions.ItemCount()))

	val, err := f.Get(ctx)
	if err != nil {
		p.sessions.Delete(key)
		if err == ctx.Err() {
			return nil, err
		}
		return nil, &AssumeRoleError{ARN: identity.ARN, Err: err}
	}

	return val.(*creds.Credentials), nil
}
