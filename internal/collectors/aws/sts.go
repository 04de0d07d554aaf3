package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/google/uuid"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// Sessions are short on purpose: one account/region extraction pass per
// credential set, no renewal.
const sessionDuration = 900

// AssumeRole assumes the named role in the target account and returns
// its temporary credentials. Uses the ambient default credential chain
// for the STS call itself.
func AssumeRole(ctx context.Context, accountID, roleName string) (*types.CredentialSet, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	roleArn := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, roleName)
	out, err := sts.NewFromConfig(cfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String("driftlog-" + uuid.NewString()),
		DurationSeconds: aws.Int32(sessionDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role %s: %w", roleArn, err)
	}

	c := out.Credentials
	return &types.CredentialSet{
		AccessKeyID:     aws.ToString(c.AccessKeyId),
		SecretAccessKey: aws.ToString(c.SecretAccessKey),
		SessionToken:    aws.ToString(c.SessionToken),
	}, nil
}
