// Package store persists ranking snapshots to Postgres or SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	_ "github.com/lib/pq"  // driver: postgres
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/nonsonwune/nestrank/migrations"
	"github.com/nonsonwune/nestrank/models"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved.
var ErrNoSnapshot = errors.New("no snapshot stored")

const defaultSQLiteDSN = "file:nestrank.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// Store holds the single most recent ranking snapshot
type Store struct {
	db     *sql.DB
	driver string
}

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case migrations.DriverSQLite:
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
	case migrations.DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	if err := migrations.InitSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the stored snapshot in a single transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"merit_results", "merit_smas", "merit_runs"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	subjects, err := json.Marshal(snap.Subjects)
	if err != nil {
		return err
	}
	created := snap.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO merit_runs (id, label, subjects_json, candidate_count, created_at)
		VALUES (1, $1, $2, $3, $4)`,
		snap.Label, string(subjects), len(snap.Candidates), created.Unix())
	if err != nil {
		return fmt.Errorf("error saving run: %w", err)
	}

	if err = insertSMAS(ctx, tx, snap.SMAS); err != nil {
		return err
	}
	if err = insertResults(ctx, tx, snap.Candidates); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot: %w", err)
	}
	log.Printf("Saved snapshot of %d candidates to %s store", len(snap.Candidates), s.driver)
	return nil
}

func insertSMAS(ctx context.Context, tx *sql.Tx, table models.SMASTable) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO merit_smas (subject, category, threshold) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("error preparing SMAS insert: %w", err)
	}
	defer stmt.Close()

	subjects := make([]string, 0, len(table))
	for subject := range table {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	for _, subject := range subjects {
		cats := make([]string, 0, len(table[subject]))
		for cat := range table[subject] {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			if _, err := stmt.ExecContext(ctx, subject, cat, table[subject][cat]); err != nil {
				return fmt.Errorf("error saving SMAS %s/%s: %w", subject, cat, err)
			}
		}
	}
	return nil
}

func insertResults(ctx context.Context, tx *sql.Tx, cands []models.Candidate) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO merit_results (
			row_num, record_json, marks_json, category, pwd_status, jk_status,
			total_marks, max_subject_mark, percentile, qualified_subjects,
			gen_rank, cat_rank, ews_rank, pwd_rank, jk_rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)
	if err != nil {
		return fmt.Errorf("error preparing result insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cands {
		record, err := json.Marshal(c.Record)
		if err != nil {
			return err
		}
		marks, err := json.Marshal(c.Marks)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			c.Row, string(record), string(marks), c.Category, c.PWDStatus, c.JKStatus,
			c.TotalMarks, c.MaxSubjectMark, c.Percentile, c.QualifiedSubjects,
			rankValue(c.Ranks.General), rankValue(c.Ranks.Category), rankValue(c.Ranks.EWS),
			rankValue(c.Ranks.PWD), rankValue(c.Ranks.Region),
		)
		if err != nil {
			return fmt.Errorf("error saving row %d: %w", c.Row, err)
		}
	}
	return nil
}

// LoadSnapshot reads the stored snapshot back, candidates in row order.
func (s *Store) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	var (
		snap     models.Snapshot
		subjects string
		count    int
		created  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT label, subjects_json, candidate_count, created_at FROM merit_runs WHERE id = 1`,
	).Scan(&snap.Label, &subjects, &count, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("error loading run: %w", err)
	}
	snap.CreatedAt = time.Unix(created, 0)
	if err := json.Unmarshal([]byte(subjects), &snap.Subjects); err != nil {
		return snap, fmt.Errorf("error decoding subjects: %w", err)
	}

	if snap.SMAS, err = s.loadSMAS(ctx); err != nil {
		return snap, err
	}
	if snap.Candidates, err = s.loadResults(ctx, count); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) loadSMAS(ctx context.Context) (models.SMASTable, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT subject, category, threshold FROM merit_smas`)
	if err != nil {
		return nil, fmt.Errorf("error loading SMAS: %w", err)
	}
	defer rows.Close()

	table := make(models.SMASTable)
	for rows.Next() {
		var subject, cat string
		var threshold float64
		if err := rows.Scan(&subject, &cat, &threshold); err != nil {
			return nil, err
		}
		if table[subject] == nil {
			table[subject] = make(map[string]float64)
		}
		table[subject][cat] = threshold
	}
	return table, rows.Err()
}

func (s *Store) loadResults(ctx context.Context, count int) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_num, record_json, marks_json, category, pwd_status, jk_status,
			total_marks, max_subject_mark, percentile, qualified_subjects,
			gen_rank, cat_rank, ews_rank, pwd_rank, jk_rank
		FROM merit_results ORDER BY row_num`)
	if err != nil {
		return nil, fmt.Errorf("error loading results: %w", err)
	}
	defer rows.Close()

	cands := make([]models.Candidate, 0, count)
	for rows.Next() {
		var (
			c             models.Candidate
			record, marks string
			ranks         [5]sql.NullString
		)
		err := rows.Scan(
			&c.Row, &record, &marks, &c.Category, &c.PWDStatus, &c.JKStatus,
			&c.TotalMarks, &c.MaxSubjectMark, &c.Percentile, &c.QualifiedSubjects,
			&ranks[0], &ranks[1], &ranks[2], &ranks[3], &ranks[4],
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(record), &c.Record); err != nil {
			return nil, fmt.Errorf("error decoding row %d: %w", c.Row, err)
		}
		if err := json.Unmarshal([]byte(marks), &c.Marks); err != nil {
			return nil, fmt.Errorf("error decoding row %d: %w", c.Row, err)
		}

		fields := []models.RankField{
			models.GeneralRank, models.CategoryRank, models.EWSRank, models.PWDRank, models.RegionRank,
		}
		for i, f := range fields {
			if !ranks[i].Valid {
				continue
			}
			r, err := models.ParseRank(ranks[i].String)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", c.Row, err)
			}
			c.Ranks.Set(f, r)
		}
		cands = append(cands, c)
	}
	return cands, rows.Err()
}

func rankValue(r *models.Rank) any {
	if r == nil {
		return nil
	}
	return r.String()
}
