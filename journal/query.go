package journal

import "time"

// ListOutcomesBetween returns outcomes whose time is within [start, end).
func (j *SQLite) ListOutcomesBetween(start, end time.Time) ([]OutcomeRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, action, symbol, quantity, price, result
		FROM outcomes
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeRecord
	for rows.Next() {
		var rec OutcomeRecord
		if err := rows.Scan(
			&rec.Time,
			&rec.Action,
			&rec.Symbol,
			&rec.Quantity,
			&rec.Price,
			&rec.Result,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
