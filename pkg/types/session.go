package types

import "time"

// Session - то, что знает сервис об операторе после входа.
// UpstreamToken никогда не отдаётся в браузер.
type Session struct {
	ID            string    `json:"id"`
	OperatorID    uint64    `json:"operator_id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	RepID         string    `json:"rep_id"`
	IsStaff       bool      `json:"is_staff"`
	UpstreamToken string    `json:"upstream_token"`
	CreatedAt     time.Time `json:"created_at"`
}
