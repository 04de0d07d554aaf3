package aws

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenaTypes "github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/cloudbeacon/driftlog/pkg/types"
)

const athenaMaxQueries = 50

// CollectAthenaQueries fetches the most recent Athena query executions
// in the region, up to athenaMaxQueries of them. A query that fails to
// describe is skipped.
func (c *Collector) CollectAthenaQueries(ctx context.Context) []types.Record {
	result, err := c.clients.Athena.ListQueryExecutions(ctx, &athena.ListQueryExecutionsInput{
		MaxResults: aws.Int32(athenaMaxQueries),
	})
	if err != nil {
		c.log.Error("failed to list Athena query executions", err)
		return nil
	}

	var records []types.Record
	for _, queryID := range result.QueryExecutionIds {
		detail, err := c.clients.Athena.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(queryID),
		})
		if err != nil || detail.QueryExecution == nil {
			c.log.WithField("query", queryID).Error("failed to get Athena query execution", err)
			continue
		}
		records = append(records, extractAthenaQuery(detail.QueryExecution, c.accountName, c.accountID, c.region))
	}

	return records
}

func extractAthenaQuery(exec *athenaTypes.QueryExecution, accountName, accountID, region string) types.AthenaQuery {
	queryID := aws.ToString(exec.QueryExecutionId)
	queryString := aws.ToString(exec.Query)

	database := types.NA
	if exec.QueryExecutionContext != nil {
		database = orNA(aws.ToString(exec.QueryExecutionContext.Database))
	}

	var duration float64
	if exec.Statistics != nil {
		duration = float64(aws.ToInt64(exec.Statistics.TotalExecutionTimeInMillis)) / 1000
	}

	description := types.NA
	if queryString != "" {
		description = types.Truncate(queryString, 500)
	}

	owner := "primary"
	if aws.ToString(exec.WorkGroup) != "" {
		owner = aws.ToString(exec.WorkGroup)
	}

	shortID := queryID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	return types.AthenaQuery{
		AccountName:        types.Truncate(accountName, 255),
		AccountID:          types.Truncate(accountID, 20),
		QueryID:            types.Truncate(queryID, 255),
		QueryName:          types.Truncate("Query-"+shortID, 255),
		Domain:             types.Truncate(database, 255),
		Description:        description,
		Database:           types.Truncate(database, 255),
		TablesUsed:         tablesFromQuery(queryString),
		ExecutionDuration:  duration,
		ExecutionFrequency: "On-demand",
		Owner:              types.Truncate(owner, 255),
		Region:             types.Truncate(region, 50),
	}
}

// tablesFromQuery pulls the first table reference after FROM. It is a
// deliberately shallow parse; joins and subqueries are not chased.
func tablesFromQuery(query string) []string {
	upper := strings.ToUpper(query)
	idx := strings.Index(upper, "FROM")
	if idx < 0 {
		return nil
	}
	rest := strings.Fields(upper[idx+len("FROM"):])
	if len(rest) == 0 {
		return nil
	}
	return []string{rest[0]}
}
