package types

// Key is the composite identity of one resource instance: the
// resource-type-specific natural id plus the owning account. Snapshot
// records and stored rows are matched on it.
type Key struct {
	ID        string
	AccountID string
}

// Record is a point-in-time snapshot of one cloud resource, flattened
// to the columns of its backing table. Fields returns every column in
// insert order, identity columns included.
type Record interface {
	Key() Key
	Fields() []Field
}

// EC2Instance is a snapshot of one EC2 instance.
type EC2Instance struct {
	AccountName      string
	AccountID        string
	InstanceID       string
	InstanceName     string
	InstanceType     string
	State            string
	PrivateIP        string
	PublicIP         string
	VpcID            string
	SubnetID         string
	AvailabilityZone string
	Region           string
	Tags             []string
}

func (r EC2Instance) Key() Key { return Key{ID: r.InstanceID, AccountID: r.AccountID} }

func (r EC2Instance) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "instanceid", Value: r.InstanceID},
		{Column: "instancename", Value: r.InstanceName},
		{Column: "instancetype", Value: r.InstanceType},
		{Column: "state", Value: r.State},
		{Column: "privateip", Value: r.PrivateIP},
		{Column: "publicip", Value: r.PublicIP},
		{Column: "vpcid", Value: r.VpcID},
		{Column: "subnetid", Value: r.SubnetID},
		{Column: "availabilityzone", Value: r.AvailabilityZone},
		{Column: "region", Value: r.Region},
		{Column: "tags", Value: r.Tags, List: true},
	}
}

// RDSInstance is a snapshot of one RDS database instance.
type RDSInstance struct {
	AccountName   string
	AccountID     string
	DbInstanceID  string
	DbName        string
	EngineType    string
	EngineVersion string
	StorageSize   int32
	InstanceType  string
	Status        string
	Region        string
	Endpoint      string
	Port          int32
	HasReplica    bool
}

func (r RDSInstance) Key() Key { return Key{ID: r.DbInstanceID, AccountID: r.AccountID} }

func (r RDSInstance) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "dbinstanceid", Value: r.DbInstanceID},
		{Column: "dbname", Value: r.DbName},
		{Column: "enginetype", Value: r.EngineType},
		{Column: "engineversion", Value: r.EngineVersion},
		{Column: "storagesize", Value: r.StorageSize},
		{Column: "instancetype", Value: r.InstanceType},
		{Column: "status", Value: r.Status},
		{Column: "region", Value: r.Region},
		{Column: "endpoint", Value: r.Endpoint},
		{Column: "port", Value: r.Port},
		{Column: "hasreplica", Value: r.HasReplica},
	}
}

// RedshiftCluster is a snapshot of one Redshift cluster.
type RedshiftCluster struct {
	AccountName   string
	AccountID     string
	ClusterID     string
	NodeType      string
	NumberOfNodes int32
	DbName        string
	Status        string
	Endpoint      string
	Port          int32
	Region        string
}

func (r RedshiftCluster) Key() Key { return Key{ID: r.ClusterID, AccountID: r.AccountID} }

func (r RedshiftCluster) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "clusterid", Value: r.ClusterID},
		{Column: "nodetype", Value: r.NodeType},
		{Column: "numberofnodes", Value: r.NumberOfNodes},
		{Column: "dbname", Value: r.DbName},
		{Column: "status", Value: r.Status},
		{Column: "endpoint", Value: r.Endpoint},
		{Column: "port", Value: r.Port},
		{Column: "region", Value: r.Region},
	}
}

// VPC is a snapshot of one VPC.
type VPC struct {
	AccountName     string
	AccountID       string
	VpcID           string
	VpcName         string
	CidrBlock       string
	State           string
	IsDefault       bool
	InstanceTenancy string
	Region          string
}

func (r VPC) Key() Key { return Key{ID: r.VpcID, AccountID: r.AccountID} }

func (r VPC) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "vpcid", Value: r.VpcID},
		{Column: "vpcname", Value: r.VpcName},
		{Column: "cidrblock", Value: r.CidrBlock},
		{Column: "state", Value: r.State},
		{Column: "isdefault", Value: r.IsDefault},
		{Column: "instancetenancy", Value: r.InstanceTenancy},
		{Column: "region", Value: r.Region},
	}
}

// Subnet is a snapshot of one VPC subnet.
type Subnet struct {
	AccountName      string
	AccountID        string
	SubnetID         string
	VpcID            string
	CidrBlock        string
	AvailabilityZone string
	State            string
	AvailableIPs     int32
	MapPublicIP      bool
	Region           string
}

func (r Subnet) Key() Key { return Key{ID: r.SubnetID, AccountID: r.AccountID} }

func (r Subnet) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "subnetid", Value: r.SubnetID},
		{Column: "vpcid", Value: r.VpcID},
		{Column: "cidrblock", Value: r.CidrBlock},
		{Column: "availabilityzone", Value: r.AvailabilityZone},
		{Column: "state", Value: r.State},
		{Column: "availableips", Value: r.AvailableIPs},
		{Column: "mappublicip", Value: r.MapPublicIP},
		{Column: "region", Value: r.Region},
	}
}

// EKSCluster is a snapshot of one EKS cluster. Its identity is the
// cluster name, not the cluster id, and its table carries no region
// column; both quirks are preserved from the data it reconciles into.
type EKSCluster struct {
	AccountName          string
	AccountID            string
	ClusterID            string
	ClusterName          string
	Status               string
	KubernetesVersion    string
	Provider             string
	ClusterSecurityGroup string
	SupportPeriod        string
	Addons               []string
	Tags                 []string
}

func (r EKSCluster) Key() Key { return Key{ID: r.ClusterName, AccountID: r.AccountID} }

func (r EKSCluster) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "clusterid", Value: r.ClusterID},
		{Column: "clustername", Value: r.ClusterName},
		{Column: "status", Value: r.Status},
		{Column: "kubernetesversion", Value: r.KubernetesVersion},
		{Column: "provider", Value: r.Provider},
		{Column: "clustersecuritygroup", Value: r.ClusterSecurityGroup},
		{Column: "supportperiod", Value: r.SupportPeriod},
		{Column: "addons", Value: r.Addons, List: true},
		{Column: "tags", Value: r.Tags, List: true},
	}
}

// LambdaFunction is a snapshot of one Lambda function. Environment and
// Triggers are counts, not contents.
type LambdaFunction struct {
	AccountName  string
	AccountID    string
	FunctionID   string
	FunctionName string
	Description  string
	Handler      string
	Runtime      string
	MemorySize   int32
	Timeout      int32
	Role         string
	Environment  int
	Triggers     int
	VPCConfig    string
	Region       string
	Tags         []string
}

func (r LambdaFunction) Key() Key { return Key{ID: r.FunctionName, AccountID: r.AccountID} }

func (r LambdaFunction) Fields() []Field {
	return []Field{
		{Column: "accountname", Value: r.AccountName},
		{Column: "accountid", Value: r.AccountID},
		{Column: "functionid", Value: r.FunctionID},
		{Column: "functionname", Value: r.FunctionName},
		{Column: "description", Value: r.Description},
		{Column: "handler", Value: r.Handler},
		{Column: "runtime", Value: r.Runtime},
		{Column: "memorysize", Value: r.MemorySize},
		{Column: "timeout", Value: r.Timeout},
		{Column: "role", Value: r.Role},
		{Column: "environment", Value: r.Environment},
		{Column: "triggers", Value: r.Triggers},
		{Column: "vpcconfig", Value: r.VPCConfig},
		{Column: "region", Value: r.Region},
		{Column: "tags", Value: r.Tags, List: true},
	}
}

// AthenaQuery is a snapshot of one Athena query execution.
type AthenaQuery struct {
	AccountName        string
	AccountID          string
	QueryID            string
	QueryName          string
	Domain             string
	Description        string
	Database           string
	TablesUsed         []string
	ExecutionDuration  float64
	ExecutionFrequency string
	Owner              string
	Region             string
}

func (r AthenaQuery) Key() Key { return Key{ID: r.QueryID, AccountID: r.AccountID} }

func (r AthenaQuery) Fields() []Field {
	return []Field{
		{Column: "account_name", Value: r.AccountName},
		{Column: "account_id", Value: r.AccountID},
		{Column: "query_id", Value: r.QueryID},
		{Column: "query_name", Value: r.QueryName},
		{Column: "domain", Value: r.Domain},
		{Column: "description", Value: r.Description},
		{Column: "database_name", Value: r.Database},
		{Column: "tables_used", Value: r.TablesUsed, List: true},
		{Column: "execution_duration", Value: r.ExecutionDuration},
		{Column: "execution_frequency", Value: r.ExecutionFrequency},
		{Column: "owner", Value: r.Owner},
		{Column: "region", Value: r.Region},
	}
}
