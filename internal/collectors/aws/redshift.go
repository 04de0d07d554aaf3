package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	redshiftTypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// CollectRedshiftClusters fetches all Redshift clusters in the region.
func (c *Collector) CollectRedshiftClusters(ctx context.Context) []types.Record {
	var records []types.Record
	var marker *string

	for {
		input := &redshift.DescribeClustersInput{}
		if marker != nil {
			input.Marker = marker
		}

		result, err := c.clients.Redshift.DescribeClusters(ctx, input)
		if err != nil {
			c.log.Error("failed to describe Redshift clusters", err)
			return records
		}

		for _, cluster := range result.Clusters {
			records = append(records, extractRedshiftCluster(cluster, c.accountName, c.accountID, c.region))
		}

		marker = result.Marker
		if marker == nil {
			break
		}
	}

	return records
}

func extractRedshiftCluster(cluster redshiftTypes.Cluster, accountName, accountID, region string) types.RedshiftCluster {
	endpoint := types.NA
	var port int32
	if cluster.Endpoint != nil {
		endpoint = orNA(aws.ToString(cluster.Endpoint.Address))
		port = aws.ToInt32(cluster.Endpoint.Port)
	}

	return types.RedshiftCluster{
		AccountName:   types.Truncate(accountName, 255),
		AccountID:     types.Truncate(accountID, 20),
		ClusterID:     types.Truncate(aws.ToString(cluster.ClusterIdentifier), 255),
		NodeType:      types.Truncate(aws.ToString(cluster.NodeType), 255),
		NumberOfNodes: aws.ToInt32(cluster.NumberOfNodes),
		DbName:        types.Truncate(orNA(aws.ToString(cluster.DBName)), 255),
		Status:        types.Truncate(aws.ToString(cluster.ClusterStatus), 255),
		Endpoint:      types.Truncate(endpoint, 255),
		Port:          port,
		Region:        types.Truncate(region, 50),
	}
}
