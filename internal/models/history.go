// internal/models/history.go
package models

import "time"

type HistoryEntry struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Result    *ResponseData `json:"result"`
	Timestamp time.Time     `json:"timestamp"`
}
