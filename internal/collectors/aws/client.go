package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/redshift"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// Clients holds the AWS service clients one account/region pass uses.
// All of them share a single config built from one assumed-role
// credential set.
type Clients struct {
	EC2        *ec2.Client
	RDS        *rds.Client
	Redshift   *redshift.Client
	EKS        *eks.Client
	Lambda     *lambda.Client
	Athena     *athena.Client
	CloudTrail *cloudtrail.Client
	Config     aws.Config
}

const maxRetries = 3

// NewClients builds service clients for one region from the temporary
// credentials of an assumed role. A nil credential set falls back to
// the default provider chain, which is what local runs and tests want.
func NewClients(ctx context.Context, region string, creds *types.CredentialSet) (*Clients, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxRetries)
		}),
	}
	if creds != nil {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Clients{
		EC2:        ec2.NewFromConfig(cfg),
		RDS:        rds.NewFromConfig(cfg),
		Redshift:   redshift.NewFromConfig(cfg),
		EKS:        eks.NewFromConfig(cfg),
		Lambda:     lambda.NewFromConfig(cfg),
		Athena:     athena.NewFromConfig(cfg),
		CloudTrail: cloudtrail.NewFromConfig(cfg),
		Config:     cfg,
	}, nil
}

// GetRegion returns the configured region.
func (c *Clients) GetRegion() string {
	return c.Config.Region
}
