package persistence

import (
	"errors"
	"fmt"
)

// ErrHistoryRewrite is returned when a save would drop rounds that are
// already stored. History is append-only.
var ErrHistoryRewrite = errors.New("history rewrite")

// Player is the stored form of a tribute.
type Player struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	District string `json:"district" db:"district"`
	HP       int    `json:"hp" db:"hp"`
	Alive    bool   `json:"alive" db:"alive"`
}

// Document is everything stored for one session.
type Document struct {
	ID      int        `json:"id"`
	Players []Player   `json:"players"`
	History [][]string `json:"history"`
	Latest  []string   `json:"latest"` // last element of History
}

// WriteError reports a failed save. The round that was being saved must not
// be treated as committed.
type WriteError struct {
	Session int
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("persist session %d: %v", e.Session, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func writeError(session int, err error) error {
	return &WriteError{Session: session, Err: err}
}
