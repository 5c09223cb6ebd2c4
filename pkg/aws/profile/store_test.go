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
package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsesDefaultProfileFromConfig(t *testing.T) {
	store, err := LoadConfig("testdata/default_config")
	assert.NoError(t, err)

	p, found := store.DefaultProfile()
	assert.True(t, found)

	region, ok := p.Region()
	assert.True(t, ok)
	assert.Equal(t, "us-east-2", region)
}

func TestParsesMultipleProfilesFromConfig(t *testing.T) {
	store, err := LoadConfig("testdata/multiple_profile_config")
	assert.NoError(t, err)

	foo, found := store.Profile("foo")
	assert.True(t, found)
	region, _ := foo.Region()
	assert.Equal(t, "us-east-3", region)

	bar, found := store.Profile("bar")
	assert.True(t, found)
	region, _ = bar.Region()
	assert.Equal(t, "us-east-4", region)
}

func TestConfigLookupPrefersBareSectionName(t *testing.T) {
	store, err := LoadConfig("testdata/multiple_profile_credentials")
	assert.NoError(t, err)

	// bare sections resolve even when loaded with config conventions
	p, found := store.Profile("foo")
	assert.True(t, found)
	key, _ := p.AccessKeyID()
	assert.Equal(t, "FOO_ACCESS_KEY", key)
}

func TestCredentialsFileIgnoresPrefixedForm(t *testing.T) {
	store, err := LoadCredentials("testdata/multiple_profile_config")
	assert.NoError(t, err)

	_, found := store.Profile("foo")
	assert.False(t, found, "credentials files never use the profile prefix")

	_, found = store.Profile("profile foo")
	assert.True(t, found)
}

func TestDefaultProfileMatchesExplicitLookup(t *testing.T) {
	store, err := LoadCredentials("testdata/multiple_profile_credentials")
	assert.NoError(t, err)

	viaDefault, found := store.DefaultProfile()
	assert.True(t, found)
	viaName, found := store.Profile("default")
	assert.True(t, found)

	defaultKey, _ := viaDefault.AccessKeyID()
	namedKey, _ := viaName.AccessKeyID()
	assert.Equal(t, namedKey, defaultKey)
}

func TestLookupIsCaseSensitive(t *testing.T) {
	store, err := LoadConfig("testdata/multiple_profile_config")
	assert.NoError(t, err)

	_, found := store.Profile("Foo")
	assert.False(t, found)
}

func TestParsesCredentialProcess(t *testing.T) {
	store, err := LoadConfig("testdata/credential_process_config")
	assert.NoError(t, err)

	p, found := store.DefaultProfile()
	assert.True(t, found)

	process, ok := p.CredentialProcess()
	assert.True(t, ok)
	assert.Equal(t, "cat testdata/credential_process_response", process)
}

func TestParsesAssumeRoleKeys(t *testing.T) {
	store, err := LoadConfig("testdata/assume_role_config")
	assert.NoError(t, err)

	p, found := store.Profile("app")
	assert.True(t, found)

	arn, _ := p.RoleARN()
	assert.Equal(t, "arn:aws:iam::123456789012:role/app", arn)
	source, _ := p.SourceProfile()
	assert.Equal(t, "base", source)
	session, _ := p.RoleSessionName()
	assert.Equal(t, "app-session", session)

	_, ok := p.ExternalID()
	assert.False(t, ok)
}

func TestMissingKeysAreAbsentNotErrors(t *testing.T) {
	store, err := LoadConfig("testdata/default_config")
	assert.NoError(t, err)

	p, _ := store.DefaultProfile()
	_, ok := p.CredentialProcess()
	assert.False(t, ok)
	_, ok = p.RoleARN()
	assert.False(t, ok)
	_, ok = p.AccessKeyID()
	assert.False(t, ok)
}

func TestMissingProfileReturnsNotFound(t *testing.T) {
	store, err := LoadConfig("testdata/default_config")
	assert.NoError(t, err)

	_, found := store.Profile("nonexistent")
	assert.False(t, found)
}

func TestLoadReportsMissingFile(t *testing.T) {
	_, err := LoadConfig("testdata/no_such_file")
	assert.Error(t, err)

	parseErr, ok := err.(*ParseError)
	assert.True(t, ok)
	assert.Equal(t, "testdata/no_such_file", parseErr.Path)
	assert.NotNil(t, parseErr.Unwrap())
}
