package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	eksTypes "github.com/aws/aws-sdk-go-v2/service/eks/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// Extended-support cutoff dates per Kubernetes minor version, shown in
// the support period column.
var eksSupportEnds = map[string]string{
	"1.31": "Nov 25, 2025",
	"1.30": "Jul 25, 2025",
	"1.29": "Mar 25, 2025",
}

// CollectEKSClusters lists all EKS clusters in the region and describes
// each one. A cluster that fails to describe is skipped, not fatal.
func (c *Collector) CollectEKSClusters(ctx context.Context) []types.Record {
	var records []types.Record
	var nextToken *string

	for {
		input := &eks.ListClustersInput{}
		if nextToken != nil {
			input.NextToken = nextToken
		}

		result, err := c.clients.EKS.ListClusters(ctx, input)
		if err != nil {
			c.log.Error("failed to list EKS clusters", err)
			return records
		}

		for _, name := range result.Clusters {
			desc, err := c.clients.EKS.DescribeCluster(ctx, &eks.DescribeClusterInput{
				Name: aws.String(name),
			})
			if err != nil || desc.Cluster == nil {
				c.log.WithField("cluster", name).Error("failed to describe EKS cluster", err)
				continue
			}
			records = append(records, c.extractEKSCluster(ctx, desc.Cluster))
		}

		nextToken = result.NextToken
		if nextToken == nil {
			break
		}
	}

	return records
}

func (c *Collector) extractEKSCluster(ctx context.Context, cluster *eksTypes.Cluster) types.EKSCluster {
	name := aws.ToString(cluster.Name)

	// Addons degrade to empty when the list call is not permitted.
	var addons []string
	addonsOut, err := c.clients.EKS.ListAddons(ctx, &eks.ListAddonsInput{
		ClusterName: aws.String(name),
	})
	if err != nil {
		c.log.WithField("cluster", name).Warn("failed to list EKS addons")
	} else {
		addons = addonsOut.Addons
	}

	clusterID := name
	if arn := aws.ToString(cluster.Arn); arn != "" {
		parts := strings.Split(arn, "/")
		clusterID = parts[len(parts)-1]
	}

	securityGroup := types.NA
	if cluster.ResourcesVpcConfig != nil && aws.ToString(cluster.ResourcesVpcConfig.ClusterSecurityGroupId) != "" {
		securityGroup = aws.ToString(cluster.ResourcesVpcConfig.ClusterSecurityGroupId)
	}

	return types.EKSCluster{
		AccountName:          types.Truncate(c.accountName, 255),
		AccountID:            types.Truncate(c.accountID, 20),
		ClusterID:            types.Truncate(clusterID, 255),
		ClusterName:          types.Truncate(name, 255),
		Status:               types.Truncate(orNA(string(cluster.Status)), 255),
		KubernetesVersion:    types.Truncate(orNA(aws.ToString(cluster.Version)), 255),
		Provider:             "AWS",
		ClusterSecurityGroup: types.Truncate(securityGroup, 255),
		SupportPeriod:        types.Truncate(supportPeriod(aws.ToString(cluster.Version), cluster.UpgradePolicy), 255),
		Addons:               addons,
		Tags:                 flattenTagMap(cluster.Tags),
	}
}

// supportPeriod renders the support tier and its end date for the
// cluster's Kubernetes version, e.g. "Standard - Ends Nov 25, 2025".
func supportPeriod(version string, policy *eksTypes.UpgradePolicyResponse) string {
	if version == "" {
		return "Standard"
	}
	tier := "Standard"
	if policy != nil && policy.SupportType == eksTypes.SupportTypeExtended {
		tier = "Extended"
	}
	ends, ok := eksSupportEnds[version]
	if !ok {
		ends = types.NA
	}
	return fmt.Sprintf("%s - Ends %s", tier, ends)
}
