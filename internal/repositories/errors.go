package repositories

import "errors"

// ErrUserNotFound is returned when a user lookup finds no row.
var ErrUserNotFound = errors.New("user not found")
