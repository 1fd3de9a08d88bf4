package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(rec OutcomeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO outcomes
		(time, action, symbol, quantity, price, result)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Time, rec.Action, rec.Symbol, rec.Quantity, rec.Price, rec.Result,
	)
	return err
}

// Summarize aggregates every stored outcome. Zero results count as neither
// win nor loss; an empty table yields a zero-valued summary.
func (j *SQLite) Summarize() (Summary, error) {
	var s Summary

	row := j.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(result > 0), 0),
			COALESCE(SUM(result < 0), 0),
			COALESCE(AVG(result), 0)
		FROM outcomes`)

	if err := row.Scan(&s.Total, &s.Wins, &s.Losses, &s.AvgResult); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
