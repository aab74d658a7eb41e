package database

import "errors"

// ErrNotReady indicates no database connection is available.
var ErrNotReady = errors.New("database not ready")
