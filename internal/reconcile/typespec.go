package reconcile

// AttributionPolicy selects how a changed field is matched to a
// CloudTrail actor. The policies differ materially and are fixed per
// resource type; do not unify them.
type AttributionPolicy int

const (
	// AttributionLatest picks the most recent event for the resource,
	// narrowed by the field's event-name set when one is mapped.
	AttributionLatest AttributionPolicy = iota
	// AttributionNearest picks the event whose timestamp is closest to
	// the record's update time by absolute delta, within 24 hours.
	AttributionNearest
)

// TypeSpec describes how one resource type reconciles: its table, the
// columns forming the identity key, the field-to-event-name attribution
// map, and the per-type policy divergences.
type TypeSpec struct {
	Name          string
	Table         string
	IDColumn      string
	AccountColumn string
	// RegionColumn names the record field carrying the region for
	// change-log rows. Empty means the table has no region column and
	// change-log rows record "N/A".
	RegionColumn string
	// EventResourceType overrides Name when querying stored CloudTrail
	// events. Subnet events are normalized under the VPC event source,
	// so subnet attribution reads VPC rows.
	EventResourceType string
	FieldEvents       map[string][]string
	// TouchUnchanged refreshes last_updated (and counts the row as
	// updated) even when no field differed.
	TouchUnchanged bool
	Attribution    AttributionPolicy
}

// eventType is the resource_type value used in cloudtrail_events
// lookups for this spec.
func (ts TypeSpec) eventType() string {
	if ts.EventResourceType != "" {
		return ts.EventResourceType
	}
	return ts.Name
}

// Static per-type lookup tables mapping a field to the event names able
// to produce a change in it. A field with no entry falls back to the
// most-recent-event-of-any-name lookup.

var rdsFieldEvents = map[string][]string{
	"dbname":        {"CreateDBInstance", "ModifyDBInstance"},
	"enginetype":    {"CreateDBInstance"},
	"engineversion": {"ModifyDBInstance"},
	"storagesize":   {"ModifyDBInstance"},
	"instancetype":  {"ModifyDBInstance"},
	"status":        {"StartDBInstance", "StopDBInstance", "RebootDBInstance", "CreateDBInstance", "DeleteDBInstance"},
	"endpoint":      {"CreateDBInstance", "ModifyDBInstance"},
	"port":          {"CreateDBInstance", "ModifyDBInstance"},
	"hasreplica":    {"CreateDBInstanceReadReplica", "DeleteDBInstance"},
}

var eksFieldEvents = map[string][]string{
	"clustername":       {"CreateCluster", "UpdateClusterConfig"},
	"status":            {"CreateCluster", "DeleteCluster", "UpdateClusterConfig"},
	"kubernetesversion": {"UpdateClusterVersion"},
	"supportperiod":     {"UpdateClusterConfig"},
	"addons":            {"CreateAddon", "DeleteAddon", "UpdateAddon"},
	"tags":              {"TagResource", "UntagResource"},
}

var lambdaFieldEvents = map[string][]string{
	"functionname": {"CreateFunction", "UpdateFunctionConfiguration"},
	"description":  {"UpdateFunctionConfiguration"},
	"handler":      {"UpdateFunctionConfiguration"},
	"runtime":      {"UpdateFunctionConfiguration"},
	"memorysize":   {"UpdateFunctionConfiguration"},
	"timeout":      {"UpdateFunctionConfiguration"},
	"role":         {"UpdateFunctionConfiguration"},
	"environment":  {"UpdateFunctionConfiguration"},
	"vpcconfig":    {"UpdateFunctionConfiguration"},
	"tags":         {"TagResource", "UntagResource"},
}

var ec2FieldEvents = map[string][]string{
	"state":        {"StartInstances", "StopInstances", "RebootInstances", "TerminateInstances", "RunInstances"},
	"instancetype": {"ModifyInstanceAttribute"},
	"instancename": {"CreateTags", "DeleteTags"},
	"tags":         {"CreateTags", "DeleteTags"},
}

var vpcFieldEvents = map[string][]string{
	"cidrblock": {"CreateVpc"},
	"state":     {"CreateVpc", "DeleteVpc"},
	"vpcname":   {"CreateTags", "DeleteTags"},
}

var subnetFieldEvents = map[string][]string{
	"cidrblock":   {"CreateSubnet"},
	"state":       {"CreateSubnet", "DeleteSubnet"},
	"mappublicip": {"ModifySubnetAttribute"},
}

// Specs for every inventoried resource type. RDS and Athena
// intentionally bump last_updated on every pass even with zero field
// changes; the others leave untouched rows alone. Athena is the one
// nearest-in-time attribution variant. EKS has no region column.
var (
	EC2Spec = TypeSpec{
		Name: "EC2", Table: "ec2",
		IDColumn: "instanceid", AccountColumn: "accountid", RegionColumn: "region",
		FieldEvents: ec2FieldEvents,
	}
	RDSSpec = TypeSpec{
		Name: "RDS", Table: "rds",
		IDColumn: "dbinstanceid", AccountColumn: "accountid", RegionColumn: "region",
		FieldEvents:    rdsFieldEvents,
		TouchUnchanged: true,
	}
	RedshiftSpec = TypeSpec{
		Name: "REDSHIFT", Table: "redshift",
		IDColumn: "clusterid", AccountColumn: "accountid", RegionColumn: "region",
		FieldEvents: map[string][]string{},
	}
	VPCSpec = TypeSpec{
		Name: "VPC", Table: "vpc",
		IDColumn: "vpcid", AccountColumn: "accountid", RegionColumn: "region",
		FieldEvents: vpcFieldEvents,
	}
	SubnetSpec = TypeSpec{
		Name: "SUBNET", Table: "subnets",
		IDColumn: "subnetid", AccountColumn: "accountid", RegionColumn: "region",
		EventResourceType: "VPC",
		FieldEvents:       subnetFieldEvents,
	}
	EKSSpec = TypeSpec{
		Name: "EKS", Table: "eks",
		IDColumn: "clustername", AccountColumn: "accountid",
		FieldEvents: eksFieldEvents,
	}
	LambdaSpec = TypeSpec{
		Name: "LAMBDA", Table: "lambda_functions",
		IDColumn: "functionname", AccountColumn: "accountid", RegionColumn: "region",
		FieldEvents: lambdaFieldEvents,
	}
	AthenaSpec = TypeSpec{
		Name: "ATHENA", Table: "athena",
		IDColumn: "query_id", AccountColumn: "account_id", RegionColumn: "region",
		FieldEvents:    map[string][]string{},
		TouchUnchanged: true,
		Attribution:    AttributionNearest,
	}
)
