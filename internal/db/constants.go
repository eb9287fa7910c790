package db

// Column layouts. Timestamps are stored as TEXT so SQLite's date functions
// and the modernc driver agree on the format.
const (
	sqlTimestampLayout = "2006-01-02 15:04:05"
	sqlDateLayout      = "2006-01-02"
)
