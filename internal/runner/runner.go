package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudbeacon/driftlog/internal/collectors/aws"
	"github.com/cloudbeacon/driftlog/internal/config"
	"github.com/cloudbeacon/driftlog/internal/logger"
	"github.com/cloudbeacon/driftlog/internal/reconcile"
	"github.com/cloudbeacon/driftlog/internal/store"
	"github.com/cloudbeacon/driftlog/pkg/types"
)

// snapshotSpecs maps snapshot service names to their reconcile specs.
var snapshotSpecs = map[string]reconcile.TypeSpec{
	"ec2":      reconcile.EC2Spec,
	"rds":      reconcile.RDSSpec,
	"redshift": reconcile.RedshiftSpec,
	"vpc":      reconcile.VPCSpec,
	"subnet":   reconcile.SubnetSpec,
	"eks":      reconcile.EKSSpec,
	"lambda":   reconcile.LambdaSpec,
	"athena":   reconcile.AthenaSpec,
}

// Runner fans extraction out over account/region pairs and feeds the
// grouped results through the reconciliation engine.
type Runner struct {
	cfg    *config.Config
	store  *store.Store
	log    logger.Logger
	engine *reconcile.Engine

	// collectUnit is swapped out in tests.
	collectUnit func(ctx context.Context, account types.Account, region string, services []string) unitResult
}

// RunSummary is the structured outcome of one collection run. Errors
// are keyed by account id; a failed unit never fails the run.
type RunSummary struct {
	Started  time.Time
	Elapsed  time.Duration
	Messages []string
	Errors   map[string][]string
}

// unitResult carries everything one account/region pass produced.
type unitResult struct {
	accountID   string
	region      string
	fingerprint string
	records     map[string][]types.Record
	events      map[string][]types.CloudTrailEvent
	err         error
}

func New(cfg *config.Config, st *store.Store, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		store:  st,
		log:    log,
		engine: reconcile.NewEngine(st, log),
	}
	r.collectUnit = r.collectAWS
	return r
}

// Run collects the given services across every configured account and
// region, then reconciles per service. An empty service list means the
// configured default set. Run reports failures in the summary and
// never returns an error.
func (r *Runner) Run(ctx context.Context, services []string) RunSummary {
	if len(services) == 0 {
		services = r.cfg.Services
	}

	summary := RunSummary{
		Started: time.Now(),
		Errors:  map[string][]string{},
	}
	r.log.WithField("services", strings.Join(services, ",")).Info("starting collection run")

	results := r.fanOut(ctx, services, &summary)

	for _, svc := range services {
		if isEventService(svc) {
			r.insertEvents(ctx, svc, results, &summary)
		} else {
			r.reconcileService(ctx, svc, results, &summary)
		}
	}

	summary.Elapsed = time.Since(summary.Started)
	r.log.WithFields(map[string]interface{}{
		"elapsed":  summary.Elapsed.Round(time.Millisecond).String(),
		"messages": len(summary.Messages),
		"errors":   len(summary.Errors),
	}).Info("collection run finished")

	return summary
}

// fanOut runs one extraction unit per account/region pair on a bounded
// worker pool and gathers the successful results.
func (r *Runner) fanOut(ctx context.Context, services []string, summary *RunSummary) []unitResult {
	type job struct {
		account types.Account
		region  string
	}

	total := len(r.cfg.Accounts) * len(r.cfg.Regions)
	workers := r.cfg.Workers
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan job)
	out := make(chan unitResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out <- r.collectUnit(ctx, j.account, j.region, services)
			}
		}()
	}
	go func() {
		for _, account := range r.cfg.Accounts {
			for _, region := range r.cfg.Regions {
				jobs <- job{account: account, region: region}
			}
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var results []unitResult
	done := 0
	for res := range out {
		done++
		r.log.WithFields(map[string]interface{}{
			"done":  done,
			"total": total,
		}).Debug("unit finished")

		if res.err != nil {
			summary.Errors[res.accountID] = append(summary.Errors[res.accountID],
				fmt.Sprintf("%s: %v", res.region, res.err))
			continue
		}
		results = append(results, res)
	}
	return results
}

// collectAWS is the real extraction path: assume the account's role,
// build clients for the region, then walk the requested services under
// the unit's wall-clock budget. Going over budget abandons the
// remaining services but keeps what was already collected.
func (r *Runner) collectAWS(ctx context.Context, account types.Account, region string, services []string) unitResult {
	res := unitResult{
		accountID: account.ID,
		region:    region,
		records:   map[string][]types.Record{},
		events:    map[string][]types.CloudTrailEvent{},
	}

	creds, err := aws.AssumeRole(ctx, account.ID, account.Role)
	if err != nil {
		res.err = fmt.Errorf("assume role: %w", err)
		return res
	}
	res.fingerprint = creds.Fingerprint()

	clients, err := aws.NewClients(ctx, region, creds)
	if err != nil {
		res.err = fmt.Errorf("build clients: %w", err)
		return res
	}
	collector := aws.New(clients, region, account.ID, account.Name, r.log)

	budget := time.Duration(r.cfg.UnitTimeoutSeconds) * time.Second
	deadline := time.Now().Add(budget)
	unitCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for _, svc := range services {
		if time.Now().After(deadline) {
			r.log.WithFields(map[string]interface{}{
				"account": account.ID,
				"region":  region,
			}).Warn("unit budget exceeded, abandoning remaining services")
			break
		}

		switch svc {
		case "ec2":
			res.records[svc] = collector.CollectEC2Instances(unitCtx)
		case "rds":
			res.records[svc] = collector.CollectRDSInstances(unitCtx)
		case "redshift":
			res.records[svc] = collector.CollectRedshiftClusters(unitCtx)
		case "vpc":
			res.records[svc] = collector.CollectVPCs(unitCtx)
		case "subnet":
			res.records[svc] = collector.CollectSubnets(unitCtx)
		case "eks":
			res.records[svc] = collector.CollectEKSClusters(unitCtx)
		case "lambda":
			res.records[svc] = collector.CollectLambdaFunctions(unitCtx)
		case "athena":
			res.records[svc] = collector.CollectAthenaQueries(unitCtx)
		case "ec2_events":
			if events, err := collector.CollectEC2Events(unitCtx); err == nil {
				res.events[svc] = events
			}
		case "rds_events":
			if events, err := collector.CollectRDSEvents(unitCtx); err == nil {
				res.events[svc] = events
			}
		case "vpc_events":
			if events, err := collector.CollectVPCEvents(unitCtx); err == nil {
				res.events[svc] = events
			}
		}
	}

	return res
}

// reconcileService groups a snapshot service's records by region and
// credential set, then reconciles each group as its own batch.
func (r *Runner) reconcileService(ctx context.Context, svc string, results []unitResult, summary *RunSummary) {
	spec, ok := snapshotSpecs[svc]
	if !ok {
		return
	}

	type groupKey struct {
		region      string
		fingerprint string
	}
	groups := map[groupKey][]types.Record{}
	var order []groupKey
	for _, res := range results {
		records := res.records[svc]
		if len(records) == 0 {
			continue
		}
		key := groupKey{region: res.region, fingerprint: res.fingerprint}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], records...)
	}

	if len(order) == 0 {
		summary.Messages = append(summary.Messages,
			fmt.Sprintf("%s: no data to insert", strings.ToUpper(svc)))
		return
	}

	for _, key := range order {
		records := groups[key]
		result := r.engine.Reconcile(ctx, spec, records)
		if result.Err != nil {
			summary.Messages = append(summary.Messages,
				fmt.Sprintf("%s (%s): reconcile failed: %v", strings.ToUpper(svc), key.region, result.Err))
			continue
		}
		summary.Messages = append(summary.Messages,
			fmt.Sprintf("%s (%s): %d items (%d inserted, %d updated)",
				strings.ToUpper(svc), key.region, result.Processed, result.Inserted, result.Updated))
	}
}

// insertEvents persists a CloudTrail pseudo-service's events per
// region.
func (r *Runner) insertEvents(ctx context.Context, svc string, results []unitResult, summary *RunSummary) {
	byRegion := map[string][]types.CloudTrailEvent{}
	var order []string
	for _, res := range results {
		events := res.events[svc]
		if len(events) == 0 {
			continue
		}
		if _, seen := byRegion[res.region]; !seen {
			order = append(order, res.region)
		}
		byRegion[res.region] = append(byRegion[res.region], events...)
	}

	if len(order) == 0 {
		summary.Messages = append(summary.Messages,
			fmt.Sprintf("%s: no data to insert", strings.ToUpper(svc)))
		return
	}

	for _, region := range order {
		events := byRegion[region]
		inserted, err := r.store.InsertEvents(ctx, events)
		if err != nil {
			summary.Messages = append(summary.Messages,
				fmt.Sprintf("%s (%s): insert failed: %v", strings.ToUpper(svc), region, err))
			continue
		}
		summary.Messages = append(summary.Messages,
			fmt.Sprintf("%s (%s): %d items (%d inserted, 0 updated)",
				strings.ToUpper(svc), region, len(events), inserted))
	}
}

func isEventService(svc string) bool {
	return strings.HasSuffix(svc, "_events")
}
