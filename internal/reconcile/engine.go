package reconcile

import (
	"context"
	"time"

	"github.com/cloudbeacon/driftlog/internal/logger"
	"github.com/cloudbeacon/driftlog/internal/store"
	"github.com/cloudbeacon/driftlog/pkg/types"
)

// Result is the outcome of reconciling one resource type's batch. A
// non-nil Err means the whole batch rolled back and all counts are
// zero; other resource types are unaffected.
type Result struct {
	Type      string
	Processed int
	Inserted  int
	Updated   int
	Err       error
}

// Engine reconciles freshly fetched snapshot records against stored
// rows: it decides insert vs update, computes per-field diffs, writes
// change-log entries with attributed actors, and batches all mutations
// for one resource type into a single transaction.
type Engine struct {
	store *store.Store
	log   logger.Logger
	now   func() time.Time
}

func NewEngine(s *store.Store, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{store: s, log: log, now: time.Now}
}

// Reconcile applies one resource type's snapshot batch. Rows absent
// from storage are inserted; present rows get a field-level diff with a
// change-log entry (and attribution lookup) per difference, then a
// single UPDATE. Stored rows never seen in the batch are left alone.
func (e *Engine) Reconcile(ctx context.Context, ts TypeSpec, records []types.Record) Result {
	res := Result{Type: ts.Name}
	if len(records) == 0 {
		return res
	}
	if e.store == nil {
		res.Err = errNoStore
		return res
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return Result{Type: ts.Name, Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	existing, err := store.LoadExisting(ctx, tx, ts.Table, ts.IDColumn, ts.AccountColumn)
	if err != nil {
		return Result{Type: ts.Name, Err: err}
	}

	resolver := NewResolver(tx, e.log)
	now := e.now()

	for _, rec := range records {
		res.Processed++
		key := rec.Key()
		fields := rec.Fields()

		row, ok := existing[key]
		if !ok {
			if err := store.InsertSnapshot(ctx, tx, ts.Table, fields, now); err != nil {
				return Result{Type: ts.Name, Err: err}
			}
			res.Inserted++
			continue
		}

		// Defensive: the lookup is keyed on these same columns, so this
		// branch should be unreachable with healthy data. When a stored
		// row disagrees with its own key the record is treated as a new
		// identity and appended, leaving the old row orphaned.
		if row[ts.IDColumn] != types.Coerce(key.ID) || row[ts.AccountColumn] != types.Coerce(key.AccountID) {
			if err := store.InsertSnapshot(ctx, tx, ts.Table, fields, now); err != nil {
				return Result{Type: ts.Name, Err: err}
			}
			res.Inserted++
			continue
		}

		region := types.NA
		if ts.RegionColumn != "" {
			for _, f := range fields {
				if f.Column == ts.RegionColumn {
					region = types.Coerce(f.Value)
					break
				}
			}
		}

		var changed []types.Field
		for _, f := range fields {
			if f.Column == ts.IDColumn || f.Column == ts.AccountColumn {
				continue
			}
			old := row[f.Column]
			if fieldEqual(old, f) {
				continue
			}
			actor := resolver.Resolve(ctx, ts, key.ID, f.Column, now)
			entry := store.ChangeLogEntry{
				ResourceType: ts.Name,
				ResourceID:   key.ID,
				FieldName:    f.Column,
				OldValue:     old,
				NewValue:     types.Coerce(f.Value),
				ChangedBy:    actor,
				AccountID:    key.AccountID,
				Region:       region,
			}
			if err := store.LogChange(ctx, tx, entry, now); err != nil {
				return Result{Type: ts.Name, Err: err}
			}
			changed = append(changed, f)
		}

		switch {
		case len(changed) > 0:
			if err := store.UpdateSnapshot(ctx, tx, ts.Table, changed, ts.IDColumn, ts.AccountColumn, key, now); err != nil {
				return Result{Type: ts.Name, Err: err}
			}
			res.Updated++
		case ts.TouchUnchanged:
			if err := store.TouchSnapshot(ctx, tx, ts.Table, ts.IDColumn, ts.AccountColumn, key, now); err != nil {
				return Result{Type: ts.Name, Err: err}
			}
			res.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{Type: ts.Name, Err: err}
	}
	committed = true

	e.log.WithFields(map[string]interface{}{
		"type":      ts.Name,
		"processed": res.Processed,
		"inserted":  res.Inserted,
		"updated":   res.Updated,
	}).Info("reconciled batch")
	return res
}
