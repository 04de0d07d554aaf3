package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

// CollectLambdaFunctions lists all Lambda functions in the region. The
// per-function detail calls (configuration, event source mappings,
// tags) degrade to sentinels when they fail.
func (c *Collector) CollectLambdaFunctions(ctx context.Context) []types.Record {
	var records []types.Record
	var marker *string

	for {
		input := &lambda.ListFunctionsInput{}
		if marker != nil {
			input.Marker = marker
		}

		result, err := c.clients.Lambda.ListFunctions(ctx, input)
		if err != nil {
			c.log.Error("failed to list Lambda functions", err)
			return records
		}

		for _, fn := range result.Functions {
			records = append(records, c.extractLambdaFunction(ctx, fn))
		}

		marker = result.NextMarker
		if marker == nil {
			break
		}
	}

	return records
}

func (c *Collector) extractLambdaFunction(ctx context.Context, fn lambdaTypes.FunctionConfiguration) types.LambdaFunction {
	name := aws.ToString(fn.FunctionName)
	flog := c.log.WithField("function", name)

	description := orNA(aws.ToString(fn.Description))
	handler := orNA(aws.ToString(fn.Handler))
	runtime := orNA(string(fn.Runtime))
	memorySize := aws.ToInt32(fn.MemorySize)
	timeout := aws.ToInt32(fn.Timeout)
	role := roleName(aws.ToString(fn.Role))
	vpcInfo := types.NA
	envVars := 0

	config, err := c.clients.Lambda.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		flog.Warn("failed to get Lambda function configuration")
	} else {
		description = orNA(aws.ToString(config.Description))
		handler = orNA(aws.ToString(config.Handler))
		runtime = orNA(string(config.Runtime))
		memorySize = aws.ToInt32(config.MemorySize)
		timeout = aws.ToInt32(config.Timeout)
		role = roleName(aws.ToString(config.Role))
		if config.VpcConfig != nil && aws.ToString(config.VpcConfig.VpcId) != "" {
			vpcInfo = fmt.Sprintf("VPC: %s, Subnets: %d",
				aws.ToString(config.VpcConfig.VpcId), len(config.VpcConfig.SubnetIds))
		}
		if config.Environment != nil {
			envVars = len(config.Environment.Variables)
		}
	}

	triggers := 0
	mappings, err := c.clients.Lambda.ListEventSourceMappings(ctx, &lambda.ListEventSourceMappingsInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		flog.Warn("failed to list Lambda event source mappings")
	} else {
		triggers = len(mappings.EventSourceMappings)
	}

	var tags map[string]string
	tagsOut, err := c.clients.Lambda.ListTags(ctx, &lambda.ListTagsInput{
		Resource: fn.FunctionArn,
	})
	if err != nil {
		flog.Warn("failed to list Lambda tags")
	} else {
		tags = tagsOut.Tags
	}

	functionID := name
	if arn := aws.ToString(fn.FunctionArn); arn != "" {
		parts := strings.Split(arn, ":")
		functionID = parts[len(parts)-1]
	}

	return types.LambdaFunction{
		AccountName:  types.Truncate(c.accountName, 255),
		AccountID:    types.Truncate(c.accountID, 20),
		FunctionID:   types.Truncate(functionID, 255),
		FunctionName: types.Truncate(name, 255),
		Description:  types.Truncate(description, 255),
		Handler:      types.Truncate(handler, 255),
		Runtime:      types.Truncate(runtime, 255),
		MemorySize:   memorySize,
		Timeout:      timeout,
		Role:         types.Truncate(role, 255),
		Environment:  envVars,
		Triggers:     triggers,
		VPCConfig:    types.Truncate(vpcInfo, 255),
		Region:       types.Truncate(c.region, 50),
		Tags:         flattenTagMap(tags),
	}
}

// roleName strips an IAM role ARN down to the bare role name.
func roleName(arn string) string {
	if arn == "" {
		return types.NA
	}
	parts := strings.Split(arn, "/")
	return parts[len(parts)-1]
}
