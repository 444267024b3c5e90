package models

import (
	"database/sql"
	"time"
)

// BilliardSession represents a hosted table
type BilliardSession struct {
	ID        string       `db:"id" json:"id"`
	Token     string       `db:"token" json:"token"`
	Private   bool         `db:"private" json:"private"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	EndedAt   sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// Round represents one finished round on a table
type Round struct {
	ID          int       `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	RoundNumber int       `db:"round_number" json:"round_number"`
	Outcome     string    `db:"outcome" json:"outcome"`
	PotCount    int       `db:"pot_count" json:"pot_count"`
	Shots       int       `db:"shots" json:"shots"`
	Frames      int       `db:"frames" json:"frames"`
	DurationMs  int64     `db:"duration_ms" json:"duration_ms"`
	EndedAt     time.Time `db:"ended_at" json:"ended_at"`
}
