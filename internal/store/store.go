// Package store persists investors and ranked matches in SQLite or
// PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"

	"github.com/spigell/fundraiser/internal/investor"
	"github.com/spigell/fundraiser/internal/scoring"
)

const (
	DefaultSQLitePath = "fundraiser.db"

	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
	pingTimeout    = 5 * time.Second
)

type Store struct {
	db *sqlx.DB
}

// Open connects to the database named by dsn. postgres:// and postgresql://
// DSNs use PostgreSQL; anything else is a SQLite file path, optionally with a
// sqlite:// prefix. An empty dsn opens DefaultSQLitePath.
func Open(dsn string) (*Store, error) {
	driver, source := parseDSN(dsn)

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == driverSQLite {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return New(db), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func parseDSN(dsn string) (driver, source string) {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return driverPostgres, dsn
	}

	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		path = DefaultSQLitePath
	}
	if !strings.Contains(path, "?") {
		path += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}
	return driverSQLite, path
}

func (s *Store) schema() []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.db.DriverName() == driverPostgres {
		id = "SERIAL PRIMARY KEY"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS investors (
	id                  ` + id + `,
	name                TEXT NOT NULL DEFAULT '',
	fund                TEXT NOT NULL DEFAULT '',
	stages              TEXT NOT NULL DEFAULT '[]',
	sectors             TEXT NOT NULL DEFAULT '[]',
	check_min           DOUBLE PRECISION,
	check_max           DOUBLE PRECISION,
	geo                 TEXT NOT NULL DEFAULT '',
	notable_investments TEXT NOT NULL DEFAULT '[]',
	recent_news         TEXT NOT NULL DEFAULT '[]',
	urls                TEXT NOT NULL DEFAULT '[]',
	warm_paths          TEXT NOT NULL DEFAULT '[]',
	unique_key          TEXT NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS matches (
	id          ` + id + `,
	run_id      TEXT NOT NULL,
	rank        INTEGER NOT NULL,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	fit_score   DOUBLE PRECISION NOT NULL,
	stage_fit   DOUBLE PRECISION NOT NULL,
	sector_fit  DOUBLE PRECISION NOT NULL,
	geo_fit     DOUBLE PRECISION NOT NULL,
	momentum    DOUBLE PRECISION NOT NULL,
	rationale   TEXT NOT NULL DEFAULT '',
	email_draft TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS matches_run_id_idx ON matches (run_id)`,
	}
}

// Init creates the tables when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range s.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

const upsertInvestorSQL = `INSERT INTO investors
	(name, fund, stages, sectors, check_min, check_max, geo, notable_investments, recent_news, urls, warm_paths, unique_key)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (unique_key) DO UPDATE SET
	name = excluded.name,
	fund = excluded.fund,
	stages = excluded.stages,
	sectors = excluded.sectors,
	check_min = excluded.check_min,
	check_max = excluded.check_max,
	geo = excluded.geo,
	notable_investments = excluded.notable_investments,
	recent_news = excluded.recent_news,
	urls = excluded.urls,
	warm_paths = excluded.warm_paths
RETURNING id`

// UpsertInvestor stores inv keyed by its identity and returns the row id.
func (s *Store) UpsertInvestor(ctx context.Context, inv investor.Investor) (int64, error) {
	return upsertInvestor(ctx, s.db, inv)
}

type queryer interface {
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	Rebind(query string) string
}

func upsertInvestor(ctx context.Context, q queryer, inv investor.Investor) (int64, error) {
	args, err := investorArgs(inv)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := q.QueryRowxContext(ctx, q.Rebind(upsertInvestorSQL), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert investor %q: %w", inv.Fund, err)
	}
	return id, nil
}

const insertMatchSQL = `INSERT INTO matches
	(run_id, rank, investor_id, fit_score, stage_fit, sector_fit, geo_fit, momentum, rationale, email_draft, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveMatches stores a ranked list under runID in a single transaction.
func (s *Store) SaveMatches(ctx context.Context, runID string, matches []scoring.Match) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	insert := tx.Rebind(insertMatchSQL)

	for i, m := range matches {
		id, upsertErr := upsertInvestor(ctx, tx, m.Investor)
		if upsertErr != nil {
			return upsertErr
		}

		if _, err = tx.ExecContext(ctx, insert,
			runID, i+1, id,
			m.Score.FitScore, m.Score.StageFit, m.Score.SectorFit, m.Score.GeoFit, m.Score.Momentum,
			m.Score.Rationale, m.EmailDraft, now,
		); err != nil {
			return fmt.Errorf("insert match %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const listMatchesSQL = `SELECT
	i.name, i.fund, i.stages, i.sectors, i.check_min, i.check_max, i.geo,
	i.notable_investments, i.recent_news, i.urls, i.warm_paths, i.unique_key,
	m.fit_score, m.stage_fit, m.sector_fit, m.geo_fit, m.momentum, m.rationale, m.email_draft
FROM matches m
JOIN investors i ON i.id = m.investor_id
WHERE m.run_id = ?
ORDER BY m.rank`

type matchRow struct {
	Name               string   `db:"name"`
	Fund               string   `db:"fund"`
	Stages             string   `db:"stages"`
	Sectors            string   `db:"sectors"`
	CheckMin           *float64 `db:"check_min"`
	CheckMax           *float64 `db:"check_max"`
	Geo                string   `db:"geo"`
	NotableInvestments string   `db:"notable_investments"`
	RecentNews         string   `db:"recent_news"`
	URLs               string   `db:"urls"`
	WarmPaths          string   `db:"warm_paths"`
	UniqueKey          string   `db:"unique_key"`
	FitScore           float64  `db:"fit_score"`
	StageFit           float64  `db:"stage_fit"`
	SectorFit          float64  `db:"sector_fit"`
	GeoFit             float64  `db:"geo_fit"`
	Momentum           float64  `db:"momentum"`
	Rationale          string   `db:"rationale"`
	EmailDraft         string   `db:"email_draft"`
}

// ListMatches returns the matches saved under runID in rank order.
func (s *Store) ListMatches(ctx context.Context, runID string) ([]scoring.Match, error) {
	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(listMatchesSQL), runID); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	matches := make([]scoring.Match, 0, len(rows))
	for _, row := range rows {
		inv := investor.Investor{
			Name:      row.Name,
			Fund:      row.Fund,
			CheckMin:  row.CheckMin,
			CheckMax:  row.CheckMax,
			Geo:       row.Geo,
			UniqueKey: row.UniqueKey,
		}
		for _, field := range []struct {
			raw string
			dst *[]string
		}{
			{row.Stages, &inv.Stages},
			{row.Sectors, &inv.Sectors},
			{row.NotableInvestments, &inv.NotableInvestments},
			{row.RecentNews, &inv.RecentNews},
			{row.URLs, &inv.URLs},
			{row.WarmPaths, &inv.WarmPaths},
		} {
			if err := json.Unmarshal([]byte(field.raw), field.dst); err != nil {
				return nil, fmt.Errorf("decode investor %q: %w", row.Fund, err)
			}
		}

		matches = append(matches, scoring.Match{
			Investor: inv,
			Score: scoring.Score{
				FitScore:  row.FitScore,
				StageFit:  row.StageFit,
				SectorFit: row.SectorFit,
				GeoFit:    row.GeoFit,
				Momentum:  row.Momentum,
				Rationale: row.Rationale,
			},
			EmailDraft: row.EmailDraft,
		})
	}
	return matches, nil
}

func investorArgs(inv investor.Investor) ([]any, error) {
	lists := [][]string{inv.Stages, inv.Sectors, inv.NotableInvestments, inv.RecentNews, inv.URLs, inv.WarmPaths}
	encoded := make([]string, len(lists))
	for i, list := range lists {
		if list == nil {
			list = []string{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("encode investor %q: %w", inv.Fund, err)
		}
		encoded[i] = string(data)
	}

	return []any{
		inv.Name, inv.Fund, encoded[0], encoded[1], inv.CheckMin, inv.CheckMax, inv.Geo,
		encoded[2], encoded[3], encoded[4], encoded[5], inv.Key(),
	}, nil
}
