package domain

import "time"

// Sync run statuses. A run starts as running and moves to exactly one of
// the terminal states; rows are never deleted.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// SyncRun is one ledger row per ingestion attempt.
type SyncRun struct {
	ID         int64      `db:"id" json:"id"`
	Status     string     `db:"status" json:"status"`
	Fetched    int        `db:"fetched" json:"fetched"`
	Upserted   int        `db:"upserted" json:"upserted"`
	StartedAt  time.Time  `db:"started_at" json:"startedAt"`
	FinishedAt *time.Time `db:"finished_at" json:"finishedAt"`
	Message    *string    `db:"message" json:"message"`
}

// SyncOutcome is what one engine pass reports back to its caller.
// Fetched counts rows that resolved to an active city; Upserted counts
// rows that made it to storage before the pass ended.
type SyncOutcome struct {
	Status   string `json:"status"`
	Fetched  int    `json:"fetched"`
	Upserted int    `json:"upserted"`
}
