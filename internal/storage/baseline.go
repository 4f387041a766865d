package storage

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"namecheck/internal/rules"
)

// Baseline records accepted diagnostics so that later checks only report
// new ones.
type Baseline struct {
	db *DB
}

// NewBaseline wraps an open database.
func NewBaseline(db *DB) *Baseline {
	return &Baseline{db: db}
}

// Run is one "baseline save".
type Run struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	ToolVersion string    `json:"toolVersion"`
	Entries     int       `json:"entries"`
}

// Stats summarises the stored baseline.
type Stats struct {
	Runs    int            `json:"runs"`
	Entries int            `json:"entries"`
	ByRule  map[string]int `json:"byRule"`
	LastRun *Run           `json:"lastRun,omitempty"`
}

// Fingerprint identifies a diagnostic independently of its location, so
// moving code does not resurface baselined findings. It is the hex blake2b-256
// of rule ID, symbol kind, container and symbol name.
func Fingerprint(d rules.Diagnostic) string {
	h, _ := blake2b.New256(nil)
	for _, part := range []string{d.RuleID, string(d.Kind), d.Container, d.SymbolName} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Save stores the fingerprints of diags under a new run. Fingerprints already
// present keep their original run.
func (b *Baseline) Save(ctx context.Context, diags []rules.Diagnostic, toolVersion string) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		ToolVersion: toolVersion,
	}

	err := b.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO baseline_runs (id, created_at, tool_version) VALUES (?, ?, ?)`,
			run.ID, run.CreatedAt.Format(time.RFC3339), run.ToolVersion,
		); err != nil {
			return fmt.Errorf("failed to insert baseline run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO baseline_entries
				(fingerprint, run_id, rule_id, symbol_kind, symbol_name, container, path, line)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range diags {
			res, err := stmt.ExecContext(ctx,
				Fingerprint(d), run.ID, d.RuleID, string(d.Kind), d.SymbolName, d.Container,
				d.Location.Path, d.Location.Line,
			)
			if err != nil {
				return fmt.Errorf("failed to insert baseline entry: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				run.Entries++
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE baseline_runs SET entry_count = ? WHERE id = ?`, run.Entries, run.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	b.db.logger.Info("Baseline saved",
		"run", run.ID,
		"entries", run.Entries,
		"diagnostics", len(diags),
	)
	return run, nil
}

// Contains reports whether d is baselined.
func (b *Baseline) Contains(ctx context.Context, d rules.Diagnostic) (bool, error) {
	var one int
	err := b.db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM baseline_entries WHERE fingerprint = ?`, Fingerprint(d),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Fingerprints returns every stored fingerprint.
func (b *Baseline) Fingerprints(ctx context.Context) (map[string]struct{}, error) {
	rows, err := b.db.conn.QueryContext(ctx, `SELECT fingerprint FROM baseline_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		out[fp] = struct{}{}
	}
	return out, rows.Err()
}

// Filter returns the diagnostics that are not baselined, in their original
// order, and the number hidden.
func (b *Baseline) Filter(ctx context.Context, diags []rules.Diagnostic) ([]rules.Diagnostic, int, error) {
	known, err := b.Fingerprints(ctx)
	if err != nil {
		return nil, 0, err
	}
	kept := make([]rules.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if _, ok := known[Fingerprint(d)]; ok {
			continue
		}
		kept = append(kept, d)
	}
	return kept, len(diags) - len(kept), nil
}

// Clear removes all runs and entries and returns the number of entries
// removed.
func (b *Baseline) Clear(ctx context.Context) (int, error) {
	var removed int64
	err := b.db.WithTx(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM baseline_entries`)
		if err != nil {
			return err
		}
		removed, _ = res.RowsAffected()
		_, err = tx.ExecContext(ctx, `DELETE FROM baseline_runs`)
		return err
	})
	if err != nil {
		return 0, err
	}
	b.db.logger.Info("Baseline cleared", "entries", removed)
	return int(removed), nil
}

// Stats returns run and entry counts.
func (b *Baseline) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByRule: make(map[string]int)}

	if err := b.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM baseline_runs`).Scan(&stats.Runs); err != nil {
		return nil, err
	}

	rows, err := b.db.conn.QueryContext(ctx, `SELECT rule_id, COUNT(*) FROM baseline_entries GROUP BY rule_id ORDER BY rule_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rule  string
			count int
		)
		if err := rows.Scan(&rule, &count); err != nil {
			return nil, err
		}
		stats.ByRule[rule] = count
		stats.Entries += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var (
		run     Run
		created string
	)
	err = b.db.conn.QueryRowContext(ctx, `
		SELECT id, created_at, tool_version, entry_count
		FROM baseline_runs ORDER BY created_at DESC, rowid DESC LIMIT 1
	`).Scan(&run.ID, &created, &run.ToolVersion, &run.Entries)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, err
	default:
		run.CreatedAt, _ = time.Parse(time.RFC3339, created)
		stats.LastRun = &run
	}
	return stats, nil
}
