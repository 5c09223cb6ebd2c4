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
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uswitch/awscreds/pkg/aws/creds"
)

// STSGateway performs the assume-role exchange: base credentials
// authenticate a call that yields temporary credentials for the identity's
// role.
type STSGateway interface {
	Issue(ctx context.Context, base *creds.Credentials, identity *RoleIdentity, expiry time.Duration) (*creds.Credentials, error)
}

type DefaultSTSGateway struct {
	session *session.Session
}

func DefaultGateway() *DefaultSTSGateway {
	return &DefaultSTSGateway{session: session.Must(session.NewSession())}
}

func (g *DefaultSTSGateway) Issue(ctx context.Context, base *creds.Credentials, identity *RoleIdentity, expiry time.Duration) (*creds.Credentials, error) {
	timer := prometheus.NewTimer(assumeRole)
	defer timer.ObserveDuration()

	assumeRoleExecuting.Inc()
	defer assumeRoleExecuting.Dec()

	config := aws.NewConfig().WithCredentials(
		credentials.NewStaticCredentials(base.AccessKeyID, base.SecretAccessKey, base.SessionToken))
	svc := sts.New(g.session, config)

	in := &sts.AssumeRoleInput{
		DurationSeconds: aws.Int64(int64(expiry.Seconds())),
		RoleArn:         aws.String(identity.ARN),
		RoleSessionName: aws.String(identity.SessionName),
	}
	if identity.ExternalID != "" {
		in.ExternalId = aws.String(identity.ExternalID)
	}

	resp, err := svc.AssumeRoleWithContext(ctx, in)
	if err != nil {
		return nil, err
	}

	return creds.NewTemporaryCredentials(
		*resp.Credentials.AccessKeyId,
		*resp.Credentials.SecretAccessKey,
		*resp.Credentials.SessionToken,
		*resp.Credentials.Expiration,
	), nil
}
