package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cloudbeacon/driftlog/internal/runner"
)

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	r.RenderSummary(runner.RunSummary{
		Elapsed: 1523 * time.Millisecond,
		Messages: []string{
			"EC2 (eu-west-1): 12 items (3 inserted, 2 updated)",
			"RDS: no data to insert",
		},
		Errors: map[string][]string{
			"222222222222": {"eu-west-1: assume role: access denied"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "=== Results ===")
	assert.Contains(t, out, "EC2 (eu-west-1): 12 items (3 inserted, 2 updated)")
	assert.Contains(t, out, "RDS: no data to insert")
	assert.Contains(t, out, "Errors in 1 accounts:")
	assert.Contains(t, out, "- account 222222222222: 1 errors")
	assert.Contains(t, out, "assume role: access denied")
	assert.Contains(t, out, "Completed in 1.52s")
}

func TestRenderSummaryNoErrors(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	r.RenderSummary(runner.RunSummary{
		Elapsed:  2 * time.Second,
		Messages: []string{"VPC (us-east-1): 3 items (0 inserted, 0 updated)"},
	})

	out := buf.String()
	assert.NotContains(t, out, "Errors in")
	assert.Contains(t, out, "Completed in 2s")
}
