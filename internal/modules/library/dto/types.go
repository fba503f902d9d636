package dto

import "time"

type AddBookInput struct {
	SourceID   string
	Title      string
	CurrChars  int64
	TotalChars int64
}

type UpdatePositionInput struct {
	SourceID  string
	CurrChars int64
}

type BookOutput struct {
	SourceID   string
	Title      string
	CurrChars  int64
	TotalChars int64
	Percent    float64
	UpdatedAt  time.Time
}
