package dto

import "time"

type StatusOutput struct {
	State     string
	Online    bool
	User      string
	Detail    string
	CheckedAt time.Time
}
