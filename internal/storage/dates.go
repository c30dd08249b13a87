package storage

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/daytrack/internal/models"
)

// DateKeyCount is one distinct date key of a table.
type DateKeyCount struct {
	Table string
	Key   string
	Rows  int
}

// Valid reports whether Key parses as a date.
func (c DateKeyCount) Valid() bool {
	_, err := models.ParseDateKey(c.Key)
	return err == nil
}

// KeysBetween lists the storage keys of start..end inclusive. DD-MM-YYYY keys
// do not sort chronologically, so windowed reads match exact keys rather than
// a range.
func KeysBetween(start, end models.Date) []string {
	var keys []string
	for d := start; !d.After(end); d = d.AddDays(1) {
		keys = append(keys, d.Key())
	}
	return keys
}

// ParseKey parses a date key read back from storage.
func ParseKey(key string) (models.Date, error) {
	d, err := models.ParseDateKey(key)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, key)
	}
	return d, nil
}

const dateKeysQuery = `
	SELECT 'activities', date, COUNT(*) FROM activities GROUP BY date
	UNION ALL
	SELECT 'habit_status', date, COUNT(*) FROM habit_status GROUP BY date
	UNION ALL
	SELECT 'todo', date, COUNT(*) FROM todo GROUP BY date
	ORDER BY 1, 2`

// QueryDateKeys runs the ListDateKeys query; both backends share the schema.
func QueryDateKeys(db *sql.DB) ([]DateKeyCount, error) {
	rows, err := db.Query(dateKeysQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []DateKeyCount
	for rows.Next() {
		var k DateKeyCount
		if err := rows.Scan(&k.Table, &k.Key, &k.Rows); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
