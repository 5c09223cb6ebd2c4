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
	"fmt"

	ini "gopkg.in/ini.v1"
)

// DefaultName is the profile used when callers don't ask for one.
const DefaultName = "default"

// ParseError indicates the config or credentials file couldn't be read or
// wasn't valid INI. The underlying cause is always retained.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing %s: %s", e.Path, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store holds the parsed sections of a single AWS config or credentials
// file. It is built once per load and never mutated.
type Store struct {
	file     *ini.File
	path     string
	prefixed bool
}

// LoadConfig parses an AWS config file. Named profiles in config files use
// the "profile <name>" section convention so lookups try both forms.
func LoadConfig(path string) (*Store, error) {
	return load(path, true)
}

// LoadCredentials parses an AWS shared credentials file. Credentials files
// only ever use bare section names.
func LoadCredentials(path string) (*Store, error) {
	return load(path, false)
}

func load(path string, prefixed bool) (*Store, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &Store{file: file, path: path, prefixed: prefixed}, nil
}

// Profile returns the named profile, trying the bare section name first and
// the "profile <name>" form second on config files. Lookup is case-sensitive.
func (s *Store) Profile(name string) (*Profile, bool) {
	if section := s.section(name); section != nil {
		return &Profile{name: name, section: section}, true
	}
	if s.prefixed {
		if section := s.section(fmt.Sprintf("profile %s", name)); section != nil {
			return &Profile{name: name, section: section}, true
		}
	}
	return nil, false
}

// DefaultProfile is shorthand for Profile(DefaultName).
func (s *Store) DefaultProfile() (*Profile, bool) {
	return s.Profile(DefaultName)
}

func (s *Store) section(name string) *ini.Section {
	section, err := s.file.GetSection(name)
	if err != nil {
		return nil
	}
	return section
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Profile is a read-only view of one section. Accessors report absence with
// a boolean rather than an error; callers decide whether missing is fatal.
type Profile struct {
	name    string
	section *ini.Section
}

func (p *Profile) Name() string {
	return p.name
}

func (p *Profile) Region() (string, bool) {
	return p.get("region")
}

func (p *Profile) CredentialProcess() (string, bool) {
	return p.get("credential_process")
}

func (p *Profile) RoleARN() (string, bool) {
	return p.get("role_arn")
}

func (p *Profile) SourceProfile() (string, bool) {
	return p.get("source_profile")
}

func (p *Profile) RoleSessionName() (string, bool) {
	return p.get("role_session_name")
}

func (p *Profile) ExternalID() (string, bool) {
	return p.get("external_id")
}

func (p *Profile) AccessKeyID() (string, bool) {
	return p.get("aws_access_key_id")
}

func (p *Profile) SecretAccessKey() (string, bool) {
	return p.get("aws_secret_access_key")
}

func (p *Profile) SessionToken() (string, bool) {
	return p.get("aws_session_token")
}

func (p *Profile) get(key string) (string, bool) {
	if !p.section.HasKey(key) {
		return "", false
	}
	return p.section.Key(key).String(), true
}
