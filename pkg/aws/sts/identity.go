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
	"fmt"

	log "github.com/sirupsen/logrus"
)

// RoleIdentity identifies one assume-role session: the role being assumed,
// the session name presented to STS and an optional external id. Identities
// with equal String() values share cached sessions.
type RoleIdentity struct {
	ARN         string
	SessionName string
	ExternalID  string
}

func (i *RoleIdentity) String() string {
	return fmt.Sprintf("%s|%s|%s", i.ARN, i.SessionName, i.ExternalID)
}

func (i *RoleIdentity) LogFields() log.Fields {
	return log.Fields{
		"role.arn":     i.ARN,
		"role.session": i.SessionName,
	}
}
