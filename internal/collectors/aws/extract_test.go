package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	athenaTypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	eksTypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	rdsTypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	redshiftTypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"
	"github.com/stretchr/testify/assert"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

func TestExtractEC2Instance(t *testing.T) {
	instance := ec2Types.Instance{
		InstanceId:       aws.String("i-0abc123"),
		InstanceType:     ec2Types.InstanceTypeT3Micro,
		State:            &ec2Types.InstanceState{Name: ec2Types.InstanceStateNameRunning},
		PrivateIpAddress: aws.String("10.0.1.5"),
		VpcId:            aws.String("vpc-111"),
		SubnetId:         aws.String("subnet-222"),
		Placement:        &ec2Types.Placement{AvailabilityZone: aws.String("eu-west-1a")},
		Tags: []ec2Types.Tag{
			{Key: aws.String("team"), Value: aws.String("data")},
			{Key: aws.String("Name"), Value: aws.String("api-server")},
		},
	}

	got := extractEC2Instance(instance, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "i-0abc123", got.InstanceID)
	assert.Equal(t, "api-server", got.InstanceName)
	assert.Equal(t, "t3.micro", got.InstanceType)
	assert.Equal(t, "running", got.State)
	assert.Equal(t, "10.0.1.5", got.PrivateIP)
	assert.Equal(t, types.NA, got.PublicIP)
	assert.Equal(t, "eu-west-1a", got.AvailabilityZone)
	assert.Equal(t, []string{"Name=api-server", "team=data"}, got.Tags)
}

func TestExtractEC2InstanceBare(t *testing.T) {
	got := extractEC2Instance(ec2Types.Instance{InstanceId: aws.String("i-1")}, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, types.NA, got.State)
	assert.Equal(t, types.NA, got.InstanceName)
	assert.Equal(t, types.NA, got.PrivateIP)
	assert.Equal(t, types.NA, got.AvailabilityZone)
	assert.Empty(t, got.Tags)
}

func TestExtractRDSInstance(t *testing.T) {
	db := rdsTypes.DBInstance{
		DBInstanceIdentifier: aws.String("orders-db"),
		DBName:               aws.String("orders"),
		Engine:               aws.String("postgres"),
		EngineVersion:        aws.String("15.4"),
		AllocatedStorage:     aws.Int32(100),
		DBInstanceClass:      aws.String("db.t3.medium"),
		DBInstanceStatus:     aws.String("available"),
		Endpoint: &rdsTypes.Endpoint{
			Address: aws.String("orders-db.abc.eu-west-1.rds.amazonaws.com"),
			Port:    aws.Int32(5432),
		},
		ReadReplicaDBInstanceIdentifiers: []string{"orders-db-replica"},
	}

	got := extractRDSInstance(db, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "orders-db", got.DbInstanceID)
	assert.Equal(t, int32(100), got.StorageSize)
	assert.Equal(t, int32(5432), got.Port)
	assert.True(t, got.HasReplica)
}

func TestExtractRDSInstanceNoEndpoint(t *testing.T) {
	got := extractRDSInstance(rdsTypes.DBInstance{
		DBInstanceIdentifier: aws.String("creating-db"),
		Engine:               aws.String("mysql"),
	}, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, types.NA, got.Endpoint)
	assert.Equal(t, int32(0), got.Port)
	assert.Equal(t, types.NA, got.DbName)
	assert.False(t, got.HasReplica)
}

func TestExtractRedshiftCluster(t *testing.T) {
	cluster := redshiftTypes.Cluster{
		ClusterIdentifier: aws.String("analytics"),
		NodeType:          aws.String("ra3.xlplus"),
		NumberOfNodes:     aws.Int32(4),
		DBName:            aws.String("warehouse"),
		ClusterStatus:     aws.String("available"),
		Endpoint: &redshiftTypes.Endpoint{
			Address: aws.String("analytics.abc.eu-west-1.redshift.amazonaws.com"),
			Port:    aws.Int32(5439),
		},
	}

	got := extractRedshiftCluster(cluster, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "analytics", got.ClusterID)
	assert.Equal(t, int32(4), got.NumberOfNodes)
	assert.Equal(t, int32(5439), got.Port)
	assert.Equal(t, "warehouse", got.DbName)
}

func TestExtractVPC(t *testing.T) {
	vpc := ec2Types.Vpc{
		VpcId:           aws.String("vpc-0abc"),
		CidrBlock:       aws.String("10.0.0.0/16"),
		State:           ec2Types.VpcStateAvailable,
		IsDefault:       aws.Bool(false),
		InstanceTenancy: ec2Types.TenancyDefault,
		Tags: []ec2Types.Tag{
			{Key: aws.String("Name"), Value: aws.String("core-network")},
		},
	}

	got := extractVPC(vpc, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "vpc-0abc", got.VpcID)
	assert.Equal(t, "core-network", got.VpcName)
	assert.Equal(t, "10.0.0.0/16", got.CidrBlock)
	assert.Equal(t, "available", got.State)
	assert.False(t, got.IsDefault)
	assert.Equal(t, "default", got.InstanceTenancy)
}

func TestExtractSubnet(t *testing.T) {
	subnet := ec2Types.Subnet{
		SubnetId:                aws.String("subnet-0def"),
		VpcId:                   aws.String("vpc-0abc"),
		CidrBlock:               aws.String("10.0.1.0/24"),
		AvailabilityZone:        aws.String("eu-west-1b"),
		State:                   ec2Types.SubnetStateAvailable,
		AvailableIpAddressCount: aws.Int32(250),
		MapPublicIpOnLaunch:     aws.Bool(true),
	}

	got := extractSubnet(subnet, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "subnet-0def", got.SubnetID)
	assert.Equal(t, "vpc-0abc", got.VpcID)
	assert.Equal(t, int32(250), got.AvailableIPs)
	assert.True(t, got.MapPublicIP)
}

func TestExtractAthenaQuery(t *testing.T) {
	exec := &athenaTypes.QueryExecution{
		QueryExecutionId: aws.String("abcdef12-3456-7890-abcd-ef1234567890"),
		Query:            aws.String("SELECT id, name FROM orders WHERE created > now()"),
		WorkGroup:        aws.String("analytics-wg"),
		QueryExecutionContext: &athenaTypes.QueryExecutionContext{
			Database: aws.String("sales"),
		},
		Statistics: &athenaTypes.QueryExecutionStatistics{
			TotalExecutionTimeInMillis: aws.Int64(2500),
		},
	}

	got := extractAthenaQuery(exec, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "abcdef12-3456-7890-abcd-ef1234567890", got.QueryID)
	assert.Equal(t, "Query-abcdef12", got.QueryName)
	assert.Equal(t, "sales", got.Database)
	assert.Equal(t, []string{"ORDERS"}, got.TablesUsed)
	assert.Equal(t, 2.5, got.ExecutionDuration)
	assert.Equal(t, "analytics-wg", got.Owner)
	assert.Equal(t, "On-demand", got.ExecutionFrequency)
}

func TestExtractAthenaQueryDefaults(t *testing.T) {
	got := extractAthenaQuery(&athenaTypes.QueryExecution{
		QueryExecutionId: aws.String("short"),
	}, "prod", "123456789012", "eu-west-1")

	assert.Equal(t, "Query-short", got.QueryName)
	assert.Equal(t, types.NA, got.Database)
	assert.Equal(t, types.NA, got.Description)
	assert.Empty(t, got.TablesUsed)
	assert.Equal(t, "primary", got.Owner)
}

func TestTablesFromQuery(t *testing.T) {
	assert.Equal(t, []string{"ORDERS"}, tablesFromQuery("select * from orders join users on 1=1"))
	assert.Nil(t, tablesFromQuery("SHOW TABLES"))
	assert.Nil(t, tablesFromQuery("SELECT 1 FROM"))
}

func TestSupportPeriod(t *testing.T) {
	assert.Equal(t, "Standard - Ends Nov 25, 2025", supportPeriod("1.31", nil))
	assert.Equal(t, "Extended - Ends Jul 25, 2025", supportPeriod("1.30", &eksTypes.UpgradePolicyResponse{
		SupportType: eksTypes.SupportTypeExtended,
	}))
	assert.Equal(t, "Standard - Ends N/A", supportPeriod("1.12", nil))
	assert.Equal(t, "Standard", supportPeriod("", nil))
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, "collector-role", roleName("arn:aws:iam::123456789012:role/collector-role"))
	assert.Equal(t, "nested-role", roleName("arn:aws:iam::123456789012:role/path/nested-role"))
	assert.Equal(t, types.NA, roleName(""))
}

func TestFlattenTagMap(t *testing.T) {
	got := flattenTagMap(map[string]string{"env": "prod", "app": "driftlog"})
	assert.Equal(t, []string{"app=driftlog", "env=prod"}, got)
	assert.Empty(t, flattenTagMap(nil))
}

func TestNameFromTags(t *testing.T) {
	tags := []ec2Types.Tag{
		{Key: aws.String("env"), Value: aws.String("prod")},
		{Key: aws.String("Name"), Value: aws.String("web-1")},
	}
	assert.Equal(t, "web-1", nameFromTags(tags))
	assert.Equal(t, types.NA, nameFromTags(nil))
}
