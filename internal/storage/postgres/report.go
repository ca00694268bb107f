package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/redarchon/internal/game/battle"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("battle report not found")

// ErrReportExists is returned when saving a report whose ID is already stored.
var ErrReportExists = errors.New("battle report already exists")

// ErrUnfinishedReport is returned when saving a report without an outcome.
var ErrUnfinishedReport = errors.New("battle report has no outcome")

const reportColumns = `id, player_id, player_name, enemy_id, enemy_name, boss, outcome,
	player_turns, damage_dealt, damage_taken, loot, elapsed_ms`

// ReportRepository provides battle report persistence operations.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts a finished battle report.
//
// Precondition: rep.Outcome must be Victory or Defeat.
// Postcondition: Returns nil on success, ErrReportExists on a duplicate ID.
func (r *ReportRepository) Save(ctx context.Context, rep battle.Report) error {
	if rep.Outcome == battle.OutcomeNone {
		return ErrUnfinishedReport
	}
	loot := rep.Loot
	if loot == nil {
		loot = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO battle_reports (`+reportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rep.ID, rep.PlayerID, rep.PlayerName, rep.EnemyID, rep.EnemyName, rep.Boss,
		rep.Outcome.String(), rep.PlayerTurns, rep.DamageDealt, rep.DamageTaken,
		loot, rep.Elapsed.Milliseconds(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("inserting battle report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
//
// Postcondition: Returns the Report or ErrReportNotFound.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (battle.Report, error) {
	rep, err := scanReport(r.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM battle_reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Report{}, ErrReportNotFound
		}
		return battle.Report{}, fmt.Errorf("querying battle report: %w", err)
	}
	return rep, nil
}

// ListRecent returns up to limit reports, newest first.
//
// Precondition: limit > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]battle.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reportColumns+` FROM battle_reports ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	return collectReports(rows)
}

// ListByPlayer returns up to limit reports for playerID, newest first.
func (r *ReportRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]battle.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reportColumns+` FROM battle_reports WHERE player_id = $1
		 ORDER BY created_at DESC, id LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports for player: %w", err)
	}
	return collectReports(rows)
}

// Summary aggregates a player's battle history.
type Summary struct {
	Battles     int
	Victories   int
	Defeats     int
	DamageDealt int
	DamageTaken int
}

// Summarize aggregates every report stored for playerID.
//
// Postcondition: Returns a zero Summary when the player has no reports.
func (r *ReportRepository) Summarize(ctx context.Context, playerID uuid.UUID) (Summary, error) {
	var s Summary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE outcome = 'victory'),
		       COUNT(*) FILTER (WHERE outcome = 'defeat'),
		       COALESCE(SUM(damage_dealt), 0),
		       COALESCE(SUM(damage_taken), 0)
		FROM battle_reports WHERE player_id = $1`, playerID,
	).Scan(&s.Battles, &s.Victories, &s.Defeats, &s.DamageDealt, &s.DamageTaken)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing battle reports: %w", err)
	}
	return s, nil
}

func collectReports(rows pgx.Rows) ([]battle.Report, error) {
	defer rows.Close()
	reports := make([]battle.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning battle report row: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (battle.Report, error) {
	var (
		rep       battle.Report
		outcome   string
		elapsedMS int64
	)
	if err := row.Scan(
		&rep.ID, &rep.PlayerID, &rep.PlayerName, &rep.EnemyID, &rep.EnemyName, &rep.Boss,
		&outcome, &rep.PlayerTurns, &rep.DamageDealt, &rep.DamageTaken,
		&rep.Loot, &elapsedMS,
	); err != nil {
		return battle.Report{}, err
	}
	o, ok := battle.ParseOutcome(outcome)
	if !ok {
		return battle.Report{}, fmt.Errorf("unknown outcome %q", outcome)
	}
	rep.Outcome = o
	rep.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return rep, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// SQLSTATE 23505 is unique_violation
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
