package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pfrederiksen/bracket-extract/internal/bracket"
	"github.com/pfrederiksen/bracket-extract/internal/logger"
)

// PostgresSink mirrors parsed brackets into PostgreSQL.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink connects to dsn and creates the tables if they are missing.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	sink := &PostgresSink{db: db}
	if err := sink.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logger.Debug("postgres sink ready", nil)
	return sink, nil
}

func (s *PostgresSink) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS tournaments (
		id SERIAL PRIMARY KEY,
		name VARCHAR(500) NOT NULL,
		category VARCHAR(200) NOT NULL,
		category_code VARCHAR(20) NOT NULL DEFAULT '',
		page_number INTEGER NOT NULL,
		bracket_size INTEGER NOT NULL,
		winner_draw_no INTEGER,
		source VARCHAR(20) NOT NULL,
		parsed_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(name, category)
	);

	CREATE TABLE IF NOT EXISTS bracket_players (
		tournament_id INTEGER NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		draw_no INTEGER NOT NULL,
		registration_no VARCHAR(8),
		seed VARCHAR(20),
		name VARCHAR(100),
		club VARCHAR(200),
		prefecture VARCHAR(10),
		is_bye BOOLEAN NOT NULL,
		PRIMARY KEY (tournament_id, draw_no)
	);

	CREATE TABLE IF NOT EXISTS bracket_matches (
		tournament_id INTEGER NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		match_no INTEGER NOT NULL,
		round VARCHAR(4) NOT NULL,
		player1_draw_no INTEGER NOT NULL,
		player2_draw_no INTEGER NOT NULL,
		winner_draw_no INTEGER,
		score VARCHAR(50),
		is_walkover BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (tournament_id, match_no)
	);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDrawNo(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

// Store replaces the rows of td's tournament and category in one transaction
// and returns the tournament id.
func (s *PostgresSink) Store(ctx context.Context, td *bracket.TournamentData) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	winner := 0
	if td.Winner != nil {
		winner = td.Winner.DrawNo
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
	INSERT INTO tournaments (name, category, category_code, page_number, bracket_size, winner_draw_no, source)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (name, category) DO UPDATE SET
		category_code = EXCLUDED.category_code,
		page_number = EXCLUDED.page_number,
		bracket_size = EXCLUDED.bracket_size,
		winner_draw_no = EXCLUDED.winner_draw_no,
		source = EXCLUDED.source,
		parsed_at = NOW()
	RETURNING id
	`, td.TournamentName, td.Category, td.CategoryInfo.Code, td.PageNumber, td.BracketSize, nullDrawNo(winner), td.Source).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storing tournament: %w", err)
	}

	for _, table := range []string{"bracket_players", "bracket_matches"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE tournament_id = $1", id); err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, p := range td.SortedPlayers() {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO bracket_players (tournament_id, draw_no, registration_no, seed, name, club, prefecture, is_bye)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, p.DrawNo, nullString(p.RegistrationNo), nullString(p.Seed), nullString(p.Name),
			nullString(p.Club), nullString(p.Prefecture), p.IsBye)
		if err != nil {
			return 0, fmt.Errorf("storing player %d: %w", p.DrawNo, err)
		}
	}

	for i, m := range td.Matches {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO bracket_matches (tournament_id, match_no, round, player1_draw_no, player2_draw_no, winner_draw_no, score, is_walkover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, i+1, string(m.Round), m.Player1DrawNo, m.Player2DrawNo, nullDrawNo(m.WinnerDrawNo),
			nullString(m.Score), m.IsWalkover)
		if err != nil {
			return 0, fmt.Errorf("storing match %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	logger.Info("result stored in postgres", logger.Fields{
		"tournament_id": id,
		"players":       len(td.Players),
		"matches":       len(td.Matches),
	})
	return id, nil
}

// CountPlayers returns the number of stored players of a tournament.
func (s *PostgresSink) CountPlayers(ctx context.Context, tournamentID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bracket_players WHERE tournament_id = $1", tournamentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
