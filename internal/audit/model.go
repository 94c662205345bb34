package audit

import "time"

// Record is one audit-log row, written by the worker for every consumed
// user lifecycle event.
type Record struct {
	ID        int       `json:"id"`
	Action    string    `json:"action"`
	Username  string    `json:"username"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
