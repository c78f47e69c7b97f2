// Package repository implements data access over MySQL using plain
// database/sql.  Methods suffixed Tx run inside a caller-owned
// transaction; the caller must commit or roll back.  Not-found is
// reported as sql.ErrNoRows; the sentinels below cover the remaining
// cross-repository failure shapes.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a unique
// constraint, such as registering a phone or login id that already
// exists.  Handlers should translate this into HTTP 409.
var ErrDuplicate = errors.New("duplicate record")
