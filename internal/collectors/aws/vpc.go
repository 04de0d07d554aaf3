package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// CollectVPCs fetches all VPCs in the region.
func (c *Collector) CollectVPCs(ctx context.Context) []types.Record {
	var records []types.Record
	var nextToken *string

	for {
		input := &ec2.DescribeVpcsInput{}
		if nextToken != nil {
			input.NextToken = nextToken
		}

		result, err := c.clients.EC2.DescribeVpcs(ctx, input)
		if err != nil {
			c.log.Error("failed to describe VPCs", err)
			return records
		}

		for _, vpc := range result.Vpcs {
			records = append(records, extractVPC(vpc, c.accountName, c.accountID, c.region))
		}

		nextToken = result.NextToken
		if nextToken == nil {
			break
		}
	}

	return records
}

// CollectSubnets fetches all subnets in the region.
func (c *Collector) CollectSubnets(ctx context.Context) []types.Record {
	var records []types.Record
	var nextToken *string

	for {
		input := &ec2.DescribeSubnetsInput{}
		if nextToken != nil {
			input.NextToken = nextToken
		}

		result, err := c.clients.EC2.DescribeSubnets(ctx, input)
		if err != nil {
			c.log.Error("failed to describe subnets", err)
			return records
		}

		for _, subnet := range result.Subnets {
			records = append(records, extractSubnet(subnet, c.accountName, c.accountID, c.region))
		}

		nextToken = result.NextToken
		if nextToken == nil {
			break
		}
	}

	return records
}

func extractVPC(vpc ec2Types.Vpc, accountName, accountID, region string) types.VPC {
	return types.VPC{
		AccountName:     types.Truncate(accountName, 255),
		AccountID:       types.Truncate(accountID, 20),
		VpcID:           types.Truncate(aws.ToString(vpc.VpcId), 255),
		VpcName:         types.Truncate(nameFromTags(vpc.Tags), 255),
		CidrBlock:       types.Truncate(orNA(aws.ToString(vpc.CidrBlock)), 255),
		State:           types.Truncate(string(vpc.State), 255),
		IsDefault:       aws.ToBool(vpc.IsDefault),
		InstanceTenancy: types.Truncate(string(vpc.InstanceTenancy), 255),
		Region:          types.Truncate(region, 50),
	}
}

func extractSubnet(subnet ec2Types.Subnet, accountName, accountID, region string) types.Subnet {
	return types.Subnet{
		AccountName:      types.Truncate(accountName, 255),
		AccountID:        types.Truncate(accountID, 20),
		SubnetID:         types.Truncate(aws.ToString(subnet.SubnetId), 255),
		VpcID:            types.Truncate(orNA(aws.ToString(subnet.VpcId)), 255),
		CidrBlock:        types.Truncate(orNA(aws.ToString(subnet.CidrBlock)), 255),
		AvailabilityZone: types.Truncate(orNA(aws.ToString(subnet.AvailabilityZone)), 255),
		State:            types.Truncate(string(subnet.State), 255),
		AvailableIPs:     aws.ToInt32(subnet.AvailableIpAddressCount),
		MapPublicIP:      aws.ToBool(subnet.MapPublicIpOnLaunch),
		Region:           types.Truncate(region, 50),
	}
}
