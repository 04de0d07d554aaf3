package aws

import (
	"sort"

	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cloudbeacon/driftlog/internal/logger"
	"github.com/cloudbeacon/driftlog/pkg/types"
)

// Collector extracts resource snapshots for one (account, region) pair.
// Provider failures degrade to empty results with a logged warning; a
// collector never fails the run.
type Collector struct {
	clients     *Clients
	region      string
	accountID   string
	accountName string
	log         logger.Logger
}

func New(clients *Clients, region, accountID, accountName string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Collector{
		clients:     clients,
		region:      region,
		accountID:   accountID,
		accountName: accountName,
		log: log.WithFields(map[string]interface{}{
			"account": accountID,
			"region":  region,
		}),
	}
}

// nameFromTags returns the Name tag value, or the sentinel when the
// resource carries none.
func nameFromTags(tags []ec2Types.Tag) string {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == "Name" && tag.Value != nil {
			return *tag.Value
		}
	}
	return types.NA
}

// flattenTags renders tag pairs as sorted "key=value" strings so two
// snapshots of the same tag set always compare equal.
func flattenTags(tags []ec2Types.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag.Key == nil {
			continue
		}
		v := ""
		if tag.Value != nil {
			v = *tag.Value
		}
		out = append(out, *tag.Key+"="+v)
	}
	sort.Strings(out)
	return out
}

// flattenTagMap is flattenTags for services reporting tags as a map.
func flattenTagMap(tags map[string]string) []string {
	out := make([]string, 0, len(tags))
	for k, v := range tags {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func orNA(s string) string {
	if s == "" {
		return types.NA
	}
	return s
}
