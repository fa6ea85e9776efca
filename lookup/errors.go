package lookup

import "errors"

var (
	// ErrInvalidIP marks input which is not a textual IP address at all.
	ErrInvalidIP = errors.New("not a valid ip address")

	// ErrNoRecord marks lookups for which the database has no entry.
	ErrNoRecord = errors.New("database has no record for this ip address")
)
