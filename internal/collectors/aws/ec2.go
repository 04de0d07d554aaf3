package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// CollectEC2Instances fetches all EC2 instances in the region.
// Terminated instances are skipped; they would otherwise linger as
// permanently "terminated" inventory rows.
func (c *Collector) CollectEC2Instances(ctx context.Context) []types.Record {
	var records []types.Record
	var nextToken *string

	for {
		input := &ec2.DescribeInstancesInput{}
		if nextToken != nil {
			input.NextToken = nextToken
		}

		result, err := c.clients.EC2.DescribeInstances(ctx, input)
		if err != nil {
			c.log.Error("failed to describe EC2 instances", err)
			return records
		}

		for _, reservation := range result.Reservations {
			for _, instance := range reservation.Instances {
				if instance.State != nil && instance.State.Name == ec2Types.InstanceStateNameTerminated {
					continue
				}
				records = append(records, extractEC2Instance(instance, c.accountName, c.accountID, c.region))
			}
		}

		nextToken = result.NextToken
		if nextToken == nil {
			break
		}
	}

	return records
}

func extractEC2Instance(instance ec2Types.Instance, accountName, accountID, region string) types.EC2Instance {
	state := types.NA
	if instance.State != nil {
		state = string(instance.State.Name)
	}
	az := types.NA
	if instance.Placement != nil {
		az = orNA(aws.ToString(instance.Placement.AvailabilityZone))
	}

	return types.EC2Instance{
		AccountName:      types.Truncate(accountName, 255),
		AccountID:        types.Truncate(accountID, 20),
		InstanceID:       types.Truncate(aws.ToString(instance.InstanceId), 255),
		InstanceName:     types.Truncate(nameFromTags(instance.Tags), 255),
		InstanceType:     types.Truncate(string(instance.InstanceType), 255),
		State:            types.Truncate(state, 255),
		PrivateIP:        types.Truncate(orNA(aws.ToString(instance.PrivateIpAddress)), 255),
		PublicIP:         types.Truncate(orNA(aws.ToString(instance.PublicIpAddress)), 255),
		VpcID:            types.Truncate(orNA(aws.ToString(instance.VpcId)), 255),
		SubnetID:         types.Truncate(orNA(aws.ToString(instance.SubnetId)), 255),
		AvailabilityZone: types.Truncate(az, 255),
		Region:           types.Truncate(region, 50),
		Tags:             flattenTags(instance.Tags),
	}
}
