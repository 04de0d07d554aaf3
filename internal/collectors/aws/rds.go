package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// CollectRDSInstances fetches all RDS database instances in the region.
func (c *Collector) CollectRDSInstances(ctx context.Context) []types.Record {
	var records []types.Record
	var marker *string

	for {
		input := &rds.DescribeDBInstancesInput{}
		if marker != nil {
			input.Marker = marker
		}

		result, err := c.clients.RDS.DescribeDBInstances(ctx, input)
		if err != nil {
			c.log.Error("failed to describe RDS instances", err)
			return records
		}

		for _, instance := range result.DBInstances {
			records = append(records, extractRDSInstance(instance, c.accountName, c.accountID, c.region))
		}

		marker = result.Marker
		if marker == nil {
			break
		}
	}

	return records
}

func extractRDSInstance(db rdsTypes.DBInstance, accountName, accountID, region string) types.RDSInstance {
	endpoint := types.NA
	var port int32
	if db.Endpoint != nil {
		endpoint = orNA(aws.ToString(db.Endpoint.Address))
		port = aws.ToInt32(db.Endpoint.Port)
	}

	return types.RDSInstance{
		AccountName:   types.Truncate(accountName, 255),
		AccountID:     types.Truncate(accountID, 20),
		DbInstanceID:  types.Truncate(aws.ToString(db.DBInstanceIdentifier), 255),
		DbName:        types.Truncate(orNA(aws.ToString(db.DBName)), 255),
		EngineType:    types.Truncate(aws.ToString(db.Engine), 255),
		EngineVersion: types.Truncate(orNA(aws.ToString(db.EngineVersion)), 255),
		StorageSize:   aws.ToInt32(db.AllocatedStorage),
		InstanceType:  types.Truncate(aws.ToString(db.DBInstanceClass), 255),
		Status:        types.Truncate(aws.ToString(db.DBInstanceStatus), 255),
		Region:        types.Truncate(region, 50),
		Endpoint:      types.Truncate(endpoint, 255),
		Port:          port,
		HasReplica:    len(db.ReadReplicaDBInstanceIdentifiers) > 0,
	}
}
