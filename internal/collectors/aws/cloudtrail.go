package aws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	ctTypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

const (
	lookbackDays    = 3
	maxLookupEvents = 100
)

// Event names worth persisting per resource type. Everything else from
// the lookup window is dropped before it reaches the store.
var importantEC2Events = map[string]bool{
	"StartInstances": true, "StopInstances": true, "RebootInstances": true,
	"TerminateInstances": true, "ModifyInstanceAttribute": true,
	"CreateTags": true, "DeleteTags": true, "RunInstances": true,
	"AttachVolume": true, "DetachVolume": true,
}

var importantRDSEvents = map[string]bool{
	"CreateDBInstance": true, "DeleteDBInstance": true, "ModifyDBInstance": true,
	"RebootDBInstance": true, "StartDBInstance": true, "StopDBInstance": true,
	"RestoreDBInstanceFromDBSnapshot": true, "CreateDBSnapshot": true,
	"DeleteDBSnapshot": true, "AddTagsToResource": true, "RemoveTagsFromResource": true,
}

var importantVPCEvents = map[string]bool{
	"CreateVpc": true, "DeleteVpc": true, "ModifyVpcAttribute": true,
	"CreateSubnet": true, "DeleteSubnet": true, "ModifySubnetAttribute": true,
	"CreateRouteTable": true, "DeleteRouteTable": true, "CreateRoute": true,
	"DeleteRoute": true, "CreateInternetGateway": true, "DeleteInternetGateway": true,
	"AttachInternetGateway": true, "DetachInternetGateway": true,
	"CreateNatGateway": true, "DeleteNatGateway": true,
}

// trailDetail is the subset of the raw CloudTrail event payload the
// normalizer reads. Request and response parameters stay loosely typed
// because their shape varies per event name.
type trailDetail struct {
	EventName    string `json:"eventName"`
	EventSource  string `json:"eventSource"`
	UserIdentity struct {
		UserName    string `json:"userName"`
		PrincipalID string `json:"principalId"`
	} `json:"userIdentity"`
	RequestParameters map[string]any `json:"requestParameters"`
	ResponseElements  map[string]any `json:"responseElements"`
}

// CollectEC2Events fetches recent CloudTrail events for EC2 instance
// lifecycle changes.
func (c *Collector) CollectEC2Events(ctx context.Context) ([]types.CloudTrailEvent, error) {
	return c.collectEvents(ctx, "ec2.amazonaws.com", importantEC2Events, "EC2")
}

// CollectRDSEvents fetches recent CloudTrail events for RDS changes.
func (c *Collector) CollectRDSEvents(ctx context.Context) ([]types.CloudTrailEvent, error) {
	return c.collectEvents(ctx, "rds.amazonaws.com", importantRDSEvents, "RDS")
}

// CollectVPCEvents fetches recent CloudTrail events for VPC and subnet
// changes. Subnet events share the VPC resource type.
func (c *Collector) CollectVPCEvents(ctx context.Context) ([]types.CloudTrailEvent, error) {
	return c.collectEvents(ctx, "ec2.amazonaws.com", importantVPCEvents, "VPC")
}

func (c *Collector) collectEvents(ctx context.Context, eventSource string, important map[string]bool, resourceType string) ([]types.CloudTrailEvent, error) {
	end := time.Now().UTC()
	start := end.Add(-lookbackDays * 24 * time.Hour)

	result, err := c.clients.CloudTrail.LookupEvents(ctx, &cloudtrail.LookupEventsInput{
		LookupAttributes: []ctTypes.LookupAttribute{{
			AttributeKey:   ctTypes.LookupAttributeKeyEventSource,
			AttributeValue: aws.String(eventSource),
		}},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		MaxResults: aws.Int32(maxLookupEvents),
	})
	if err != nil {
		c.log.WithField("type", resourceType).Error("failed to look up CloudTrail events", err)
		return nil, err
	}

	var events []types.CloudTrailEvent
	for _, raw := range result.Events {
		var detail trailDetail
		if err := json.Unmarshal([]byte(aws.ToString(raw.CloudTrailEvent)), &detail); err != nil {
			c.log.WithField("event", aws.ToString(raw.EventId)).Warn("skipping malformed CloudTrail event")
			continue
		}
		if !important[detail.EventName] {
			continue
		}

		actor := detail.UserIdentity.UserName
		if actor == "" {
			actor = detail.UserIdentity.PrincipalID
		}
		if actor == "" {
			actor = "unknown"
		}

		source := detail.EventSource
		if source == "" {
			source = "unknown"
		}

		events = append(events, types.CloudTrailEvent{
			EventID:      aws.ToString(raw.EventId),
			EventTime:    aws.ToTime(raw.EventTime),
			EventName:    detail.EventName,
			EventSource:  source,
			UserName:     actor,
			ResourceName: extractResourceID(detail, resourceType),
			ResourceType: resourceType,
			Region:       c.region,
			Changes:      extractChanges(detail, resourceType),
		})
	}

	return events, nil
}

// extractResourceID digs the affected resource's id out of the event's
// request or response parameters. The location varies per event name.
func extractResourceID(detail trailDetail, resourceType string) string {
	req := detail.RequestParameters
	res := detail.ResponseElements

	switch resourceType {
	case "EC2":
		switch detail.EventName {
		case "StartInstances", "StopInstances", "RebootInstances", "TerminateInstances":
			if id := firstInstanceID(req); id != "" {
				return id
			}
		case "ModifyInstanceAttribute":
			if id := stringParam(req, "instanceId"); id != "" {
				return id
			}
		}
		for _, key := range []string{"instanceId", "resourceId"} {
			if id := stringParam(req, key); id != "" {
				return id
			}
		}

	case "RDS":
		for _, params := range []map[string]any{req, res} {
			if id := stringParam(params, "dBInstanceIdentifier"); id != "" {
				return id
			}
		}
		if id := stringParam(req, "dBSnapshotIdentifier"); id != "" {
			return id
		}
		if detail.EventName == "AddTagsToResource" || detail.EventName == "RemoveTagsFromResource" {
			if id := rdsARNInstanceID(stringParam(req, "resourceName")); id != "" {
				return id
			}
		}

	case "VPC":
		if id := stringParam(req, "vpcId"); id != "" {
			return id
		}
		if id := nestedID(res, "vpc", "vpcId"); id != "" {
			return id
		}
		if id := stringParam(req, "subnetId"); id != "" {
			return id
		}
		if id := nestedID(res, "subnet", "subnetId"); id != "" {
			return id
		}
		if id := stringParam(req, "internetGatewayId"); id != "" {
			return id
		}
		if id := nestedID(res, "internetGateway", "internetGatewayId"); id != "" {
			return id
		}
		if id := stringParam(req, "natGatewayId"); id != "" {
			return id
		}
		if id := nestedID(res, "natGateway", "natGatewayId"); id != "" {
			return id
		}
	}

	return "unknown"
}

// extractChanges builds the per-event changes blob that lands in the
// events table's JSON column.
func extractChanges(detail trailDetail, resourceType string) map[string]any {
	req := detail.RequestParameters
	res := detail.ResponseElements
	details := map[string]any{}

	switch resourceType {
	case "EC2":
		switch detail.EventName {
		case "StartInstances", "StopInstances", "RebootInstances", "TerminateInstances":
			if state := instanceCurrentState(res); state != "" {
				details["state"] = state
			}
		case "ModifyInstanceAttribute":
			for key, value := range req {
				if key != "instanceId" && key != "attribute" && key != "value" {
					details[key] = value
				}
			}
		}

	case "RDS":
		switch detail.EventName {
		case "CreateDBInstance":
			details["engine"] = req["engine"]
			details["dbInstanceClass"] = req["dbInstanceClass"]
			details["allocatedStorage"] = req["allocatedStorage"]
			details["multiAZ"] = req["multiAZ"]
		case "ModifyDBInstance":
			for _, key := range []string{"dbInstanceClass", "allocatedStorage", "multiAZ", "engineVersion"} {
				if v, ok := req[key]; ok {
					details[key] = v
				}
			}
		case "StartDBInstance", "StopDBInstance", "RebootDBInstance":
			details["action"] = strings.TrimSuffix(detail.EventName, "DBInstance")
		case "AddTagsToResource", "RemoveTagsFromResource":
			if tags, ok := req["tags"]; ok {
				details["tags"] = tags
			}
		}

	case "VPC":
		switch detail.EventName {
		case "CreateVpc":
			details["cidrBlock"] = req["cidrBlock"]
			tenancy := req["instanceTenancy"]
			if tenancy == nil {
				tenancy = "default"
			}
			details["instanceTenancy"] = tenancy
			if id := nestedID(res, "vpc", "vpcId"); id != "" {
				details["vpcId"] = id
			}
		case "ModifyVpcAttribute":
			for key, value := range req {
				if key != "vpcId" && key != "attribute" {
					details[key] = value
				}
			}
		case "CreateSubnet":
			details["vpcId"] = req["vpcId"]
			details["cidrBlock"] = req["cidrBlock"]
			details["availabilityZone"] = req["availabilityZone"]
			if id := nestedID(res, "subnet", "subnetId"); id != "" {
				details["subnetId"] = id
			}
		case "CreateInternetGateway":
			if id := nestedID(res, "internetGateway", "internetGatewayId"); id != "" {
				details["internetGatewayId"] = id
			}
		case "AttachInternetGateway", "DetachInternetGateway":
			details["vpcId"] = req["vpcId"]
			details["internetGatewayId"] = req["internetGatewayId"]
		case "CreateNatGateway":
			details["subnetId"] = req["subnetId"]
			details["allocationId"] = req["allocationId"]
			if id := nestedID(res, "natGateway", "natGatewayId"); id != "" {
				details["natGatewayId"] = id
			}
		}
	}

	return map[string]any{
		"eventType": detail.EventName,
		"details":   details,
	}
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	s, _ := params[key].(string)
	return s
}

// nestedID reads params[object][key] as a string.
func nestedID(params map[string]any, object, key string) string {
	if params == nil {
		return ""
	}
	obj, _ := params[object].(map[string]any)
	return stringParam(obj, key)
}

// firstInstanceID reads the first instance id from the instancesSet
// structure carried by EC2 lifecycle events.
func firstInstanceID(req map[string]any) string {
	set, _ := req["instancesSet"].(map[string]any)
	items, _ := set["items"].([]any)
	if len(items) == 0 {
		return ""
	}
	first, _ := items[0].(map[string]any)
	return stringParam(first, "instanceId")
}

// instanceCurrentState reads the post-transition state name from the
// response of an EC2 lifecycle event.
func instanceCurrentState(res map[string]any) string {
	set, _ := res["instancesSet"].(map[string]any)
	items, _ := set["items"].([]any)
	if len(items) == 0 {
		return ""
	}
	first, _ := items[0].(map[string]any)
	state, _ := first["currentState"].(map[string]any)
	return stringParam(state, "name")
}

// rdsARNInstanceID pulls the db instance identifier out of an RDS tag
// event's resource ARN, e.g. arn:aws:rds:eu-west-1:123:db:mydb.
func rdsARNInstanceID(arn string) string {
	if !strings.Contains(arn, "rds") || !strings.Contains(arn, ":db:") {
		return ""
	}
	parts := strings.Split(arn, ":")
	if len(parts) > 6 {
		return parts[6]
	}
	return ""
}
