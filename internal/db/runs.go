package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/beacon.map/internal/align"
	"github.com/banshee-data/beacon.map/internal/geom"
)

// Run is the stored summary of one alignment run.
type Run struct {
	RunID        string          `json:"run_id"`
	CreatedAt    int64           `json:"created_at"`
	ScannerCount int             `json:"scanner_count"`
	BeaconCount  int             `json:"beacon_count"`
	MaxDistance  int             `json:"max_distance"`
	MaxPair      [2]int          `json:"max_pair"`
	Attempts     int             `json:"attempts"`
	Pruned       int             `json:"pruned"`
	Passes       int             `json:"passes"`
	FallbackUsed bool            `json:"fallback_used"`
	Elapsed      time.Duration   `json:"elapsed_ns"`
	ParamsJSON   json.RawMessage `json:"params_json,omitempty"`
}

// Pose is the stored placement of one scanner within a run.
type Pose struct {
	ScannerID int `json:"scanner_id"`
	// ParentID is the scanner this one was matched against, -1 for the
	// reference.
	ParentID int `json:"parent_id"`
	// ResolveOrder is the position of the scanner in the resolution order.
	ResolveOrder int `json:"resolve_order"`
	// Matrix is the 4x4 row-major rigid transform into the reference frame.
	Matrix [16]float64 `json:"matrix"`
}

// Transform converts the stored matrix back to an exact transform.
func (p Pose) Transform() (geom.Transform, error) {
	return geom.TransformFromMatrix(p.Matrix)
}

// RecordRun stores a completed alignment: the summary, one pose per
// scanner and the beacon map, in a single transaction. params is stored
// verbatim and may be nil.
func (db *DB) RecordRun(ctx context.Context, res *align.Result, m *align.Map, params json.RawMessage) (*Run, error) {
	if res == nil || m == nil {
		return nil, errors.New("record run: result and map are required")
	}

	dist, a, b := m.MaxScannerDistance()
	run := &Run{
		RunID:        uuid.New().String(),
		CreatedAt:    db.clock.Now().UnixNano(),
		ScannerCount: len(res.Scanners),
		BeaconCount:  m.BeaconCount(),
		MaxDistance:  dist,
		MaxPair:      [2]int{a, b},
		Attempts:     res.Attempts,
		Pruned:       res.Pruned,
		Passes:       res.Passes,
		FallbackUsed: res.FallbackUsed,
		Elapsed:      res.Elapsed,
		ParamsJSON:   params,
	}

	orderOf := make(map[int]int, len(res.Order))
	for i, id := range res.Order {
		orderOf[id] = i
	}

	poses := make([]Pose, 0, len(res.Scanners))
	for i, s := range res.Scanners {
		r, ok := s.Resolution()
		if !ok {
			return nil, fmt.Errorf("record run: scanner %d: %w", s.ID, align.ErrIncomplete)
		}
		T := r.Transform.Matrix()
		if !geom.IsValidTransformMatrix(T) {
			return nil, fmt.Errorf("record run: scanner %d has an invalid pose", s.ID)
		}
		parent := -1
		if i < len(res.Parent) {
			parent = res.Parent[i]
		}
		poses = append(poses, Pose{ScannerID: s.ID, ParentID: parent, ResolveOrder: orderOf[s.ID], Matrix: T})
	}

	err := retryOnBusy(func() error {
		return db.insertRun(ctx, run, poses, m.Beacons)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (db *DB) insertRun(ctx context.Context, run *Run, poses []Pose, beacons []geom.Point) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO alignment_runs (
			run_id, created_at, scanner_count, beacon_count,
			max_distance, max_pair_a, max_pair_b,
			attempts, pruned, passes, fallback_used, elapsed_ns, params_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.ScannerCount, run.BeaconCount,
		run.MaxDistance, run.MaxPair[0], run.MaxPair[1],
		run.Attempts, run.Pruned, run.Passes, run.FallbackUsed, int64(run.Elapsed), paramsStr,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	poseStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scanner_poses (run_id, scanner_id, parent_id, resolve_order, pose_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare pose insert: %w", err)
	}
	defer poseStmt.Close()

	for _, p := range poses {
		poseJSON, err := json.Marshal(p.Matrix)
		if err != nil {
			return fmt.Errorf("marshal pose %d: %w", p.ScannerID, err)
		}
		if _, err := poseStmt.ExecContext(ctx, run.RunID, p.ScannerID, p.ParentID, p.ResolveOrder, string(poseJSON)); err != nil {
			return fmt.Errorf("insert pose %d: %w", p.ScannerID, err)
		}
	}

	beaconStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_beacons (run_id, x, y, z) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare beacon insert: %w", err)
	}
	defer beaconStmt.Close()

	for _, b := range beacons {
		if _, err := beaconStmt.ExecContext(ctx, run.RunID, b.X, b.Y, b.Z); err != nil {
			return fmt.Errorf("insert beacon %v: %w", b, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, created_at, scanner_count, beacon_count,
	max_distance, max_pair_a, max_pair_b,
	attempts, pruned, passes, fallback_used, elapsed_ns, params_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var elapsed int64
	var paramsStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.CreatedAt, &r.ScannerCount, &r.BeaconCount,
		&r.MaxDistance, &r.MaxPair[0], &r.MaxPair[1],
		&r.Attempts, &r.Pruned, &r.Passes, &r.FallbackUsed, &elapsed, &paramsStr,
	)
	if err != nil {
		return nil, err
	}
	r.Elapsed = time.Duration(elapsed)
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}

// GetRun returns a single run by ID.
func (db *DB) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM alignment_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `SELECT `+runColumns+` FROM alignment_runs
		ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Poses returns the stored scanner poses of a run ordered by scanner ID.
func (db *DB) Poses(ctx context.Context, runID string) ([]Pose, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT scanner_id, parent_id, resolve_order, pose_json
		FROM scanner_poses WHERE run_id = ? ORDER BY scanner_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query poses: %w", err)
	}
	defer rows.Close()

	var poses []Pose
	for rows.Next() {
		var p Pose
		var poseJSON string
		if err := rows.Scan(&p.ScannerID, &p.ParentID, &p.ResolveOrder, &poseJSON); err != nil {
			return nil, fmt.Errorf("scan pose row: %w", err)
		}
		if err := json.Unmarshal([]byte(poseJSON), &p.Matrix); err != nil {
			return nil, fmt.Errorf("decode pose %d: %w", p.ScannerID, err)
		}
		poses = append(poses, p)
	}
	return poses, rows.Err()
}

// Beacons returns the stored beacon map of a run in sorted order.
func (db *DB) Beacons(ctx context.Context, runID string) ([]geom.Point, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT x, y, z FROM run_beacons WHERE run_id = ? ORDER BY x, y, z`, runID)
	if err != nil {
		return nil, fmt.Errorf("query beacons: %w", err)
	}
	defer rows.Close()

	var pts []geom.Point
	for rows.Next() {
		var p geom.Point
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, fmt.Errorf("scan beacon row: %w", err)
		}
		pts = append(pts, p)
	}
	return pts, rows.Err()
}

// DeleteRun removes a run together with its poses and beacons.
func (db *DB) DeleteRun(ctx context.Context, runID string) error {
	return retryOnBusy(func() error {
		result, err := db.ExecContext(ctx, `DELETE FROM alignment_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil
	})
}
