package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbeacon/driftlog/internal/logger"
	"github.com/cloudbeacon/driftlog/internal/store"
	"github.com/cloudbeacon/driftlog/pkg/types"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema())
	t.Cleanup(func() { s.Close() })
	return NewEngine(s, logger.NewNop()), s
}

func rdsRecord(status string) types.RDSInstance {
	return types.RDSInstance{
		AccountName:  "prod",
		AccountID:    "111",
		DbInstanceID: "db-1",
		DbName:       "app",
		EngineType:   "postgres",
		StorageSize:  100,
		InstanceType: "db.t3.micro",
		Status:       status,
		Region:       "eu-west-1",
		Endpoint:     "db-1.example.amazonaws.com",
		Port:         5432,
	}
}

func TestReconcileEmptyBatchIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t)
	res := e.Reconcile(context.Background(), RDSSpec, nil)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 0, res.Updated)
}

func TestReconcileInsertsNewRecords(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	res := e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("available")})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 0, res.Updated)

	existing, err := store.LoadExisting(ctx, s.DB(), "rds", "dbinstanceid", "accountid")
	require.NoError(t, err)
	require.Len(t, existing, 1)
	assert.Equal(t, "available", existing[types.Key{ID: "db-1", AccountID: "111"}]["status"])
}

func TestReconcileDetectsFieldChangeAndLogsIt(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	res := e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("available")})
	require.NoError(t, res.Err)
	require.Equal(t, 1, res.Inserted)

	res = e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("stopped")})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	entries, err := s.ChangesFor(ctx, "RDS", "db-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].FieldName)
	assert.Equal(t, "available", entries[0].OldValue)
	assert.Equal(t, "stopped", entries[0].NewValue)
	assert.Equal(t, UnknownActor, entries[0].ChangedBy)
	assert.Equal(t, "111", entries[0].AccountID)
	assert.Equal(t, "eu-west-1", entries[0].Region)

	existing, err := store.LoadExisting(ctx, s.DB(), "rds", "dbinstanceid", "accountid")
	require.NoError(t, err)
	assert.Equal(t, "stopped", existing[types.Key{ID: "db-1", AccountID: "111"}]["status"])
}

func TestReconcileUnchangedRDSRefreshesTimestamp(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return first }
	require.NoError(t, e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("available")}).Err)

	second := first.Add(time.Hour)
	e.now = func() time.Time { return second }
	res := e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("available")})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Updated)

	existing, err := store.LoadExisting(ctx, s.DB(), "rds", "dbinstanceid", "accountid")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T11:00:00Z", existing[types.Key{ID: "db-1", AccountID: "111"}]["last_updated"])

	// No field changed, so nothing hit the change log.
	entries, err := s.ChangesFor(ctx, "RDS", "db-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReconcileUnchangedLambdaLeavesRowAlone(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	fn := types.LambdaFunction{
		AccountName:  "prod",
		AccountID:    "111",
		FunctionID:   "fn-1",
		FunctionName: "ingest",
		Handler:      "main.handler",
		Runtime:      "go1.x",
		MemorySize:   128,
		Timeout:      30,
		Region:       "eu-west-1",
	}

	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return first }
	require.NoError(t, e.Reconcile(ctx, LambdaSpec, []types.Record{fn}).Err)

	e.now = func() time.Time { return first.Add(time.Hour) }
	res := e.Reconcile(ctx, LambdaSpec, []types.Record{fn})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 0, res.Updated)

	existing, err := store.LoadExisting(ctx, s.DB(), "lambda_functions", "functionname", "accountid")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T10:00:00Z", existing[types.Key{ID: "ingest", AccountID: "111"}]["last_updated"])
}

func TestReconcileListComparisonIgnoresOrder(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	cluster := types.EKSCluster{
		AccountName: "prod",
		AccountID:   "111",
		ClusterID:   "c-1",
		ClusterName: "prod-cluster",
		Status:      "ACTIVE",
		Addons:      []string{"vpc-cni", "coredns"},
		Tags:        []string{"env=prod", "team=data"},
	}
	require.NoError(t, e.Reconcile(ctx, EKSSpec, []types.Record{cluster}).Err)

	// Same lists, different order: no diff, no update.
	cluster.Addons = []string{"coredns", "vpc-cni"}
	cluster.Tags = []string{"team=data", "env=prod"}
	res := e.Reconcile(ctx, EKSSpec, []types.Record{cluster})
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.Updated)

	entries, err := s.ChangesFor(ctx, "EKS", "prod-cluster")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A genuinely different list is a diff.
	cluster.Addons = []string{"coredns", "vpc-cni", "kube-proxy"}
	res = e.Reconcile(ctx, EKSSpec, []types.Record{cluster})
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Updated)

	entries, err = s.ChangesFor(ctx, "EKS", "prod-cluster")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "addons", entries[0].FieldName)
}

func TestReconcileEKSChangeLogHasNoRegion(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	cluster := types.EKSCluster{AccountID: "111", ClusterID: "c-1", ClusterName: "prod-cluster", Status: "ACTIVE"}
	require.NoError(t, e.Reconcile(ctx, EKSSpec, []types.Record{cluster}).Err)

	cluster.Status = "UPDATING"
	require.NoError(t, e.Reconcile(ctx, EKSSpec, []types.Record{cluster}).Err)

	entries, err := s.ChangesFor(ctx, "EKS", "prod-cluster")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.NA, entries[0].Region)
}

func TestReconcileAttributesChangeToLatestMatchingEvent(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.InsertEvents(ctx, []types.CloudTrailEvent{
		{
			EventID: "evt-old", EventTime: base.Add(-2 * time.Hour),
			EventName: "StopDBInstance", EventSource: "rds.amazonaws.com",
			UserName: "bob", ResourceName: "db-1", ResourceType: "RDS", Region: "eu-west-1",
		},
		{
			EventID: "evt-new", EventTime: base.Add(-10 * time.Minute),
			EventName: "StartDBInstance", EventSource: "rds.amazonaws.com",
			UserName: "alice", ResourceName: "db-1", ResourceType: "RDS", Region: "eu-west-1",
		},
		{
			// Not in the status field's event set; must not win.
			EventID: "evt-modify", EventTime: base.Add(-1 * time.Minute),
			EventName: "AddTagsToResource", EventSource: "rds.amazonaws.com",
			UserName: "carol", ResourceName: "db-1", ResourceType: "RDS", Region: "eu-west-1",
		},
	})
	require.NoError(t, err)

	require.NoError(t, e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("stopped")}).Err)
	require.NoError(t, e.Reconcile(ctx, RDSSpec, []types.Record{rdsRecord("available")}).Err)

	entries, err := s.ChangesFor(ctx, "RDS", "db-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].FieldName)
	assert.Equal(t, "alice", entries[0].ChangedBy)
}

func TestReconcileAtomicRollbackOnMidBatchFailure(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	var records []types.Record
	for _, id := range []string{"db-1", "db-2", "db-3", "db-4", "db-5"} {
		r := rdsRecord("available")
		r.DbInstanceID = id
		records = append(records, r)
	}
	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return first }
	require.NoError(t, e.Reconcile(ctx, RDSSpec, records).Err)

	// Sabotage the change log so the first detected diff fails.
	_, err := s.DB().Exec("DROP TABLE change_log")
	require.NoError(t, err)

	changed := make([]types.Record, len(records))
	for i, r := range records {
		rr := r.(types.RDSInstance)
		if rr.DbInstanceID == "db-3" {
			rr.Status = "stopped"
		}
		changed[i] = rr
	}

	e.now = func() time.Time { return first.Add(time.Hour) }
	res := e.Reconcile(ctx, RDSSpec, changed)
	require.Error(t, res.Err)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 0, res.Updated)

	// Nothing from the failed batch committed: db-1/db-2 touches rolled
	// back, db-3's status update rolled back.
	existing, err := store.LoadExisting(ctx, s.DB(), "rds", "dbinstanceid", "accountid")
	require.NoError(t, err)
	for _, id := range []string{"db-1", "db-2", "db-3", "db-4", "db-5"} {
		row := existing[types.Key{ID: id, AccountID: "111"}]
		assert.Equal(t, "available", row["status"], id)
		assert.Equal(t, "2025-06-01T10:00:00Z", row["last_updated"], id)
	}
}

func TestReconcileEndToEndScenario(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	snap := types.RDSInstance{
		AccountID:    "111",
		DbInstanceID: "db-1",
		Status:       "available",
		EngineType:   "postgres",
		Region:       "eu-west-1",
	}
	res := e.Reconcile(ctx, RDSSpec, []types.Record{snap})
	require.NoError(t, res.Err)
	assert.Equal(t, Result{Type: "RDS", Processed: 1, Inserted: 1, Updated: 0}, res)

	snap.Status = "stopped"
	res = e.Reconcile(ctx, RDSSpec, []types.Record{snap})
	require.NoError(t, res.Err)
	assert.Equal(t, Result{Type: "RDS", Processed: 1, Inserted: 0, Updated: 1}, res)

	entries, err := s.ChangesFor(ctx, "RDS", "db-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].FieldName)
}

func TestReconcileWithoutStoreReturnsError(t *testing.T) {
	e := NewEngine(nil, logger.NewNop())
	res := e.Reconcile(context.Background(), RDSSpec, []types.Record{rdsRecord("available")})
	assert.Error(t, res.Err)
}
