// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	result REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_time ON outcomes(time);
`
