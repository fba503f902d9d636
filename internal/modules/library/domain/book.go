package domain

import (
	"fmt"
	"strings"
	"time"
)

// Book is the per-source reading position ledger. CurrChars is the character
// offset a new reading session starts from.
type Book struct {
	SourceID   string
	Title      string
	CurrChars  int64
	TotalChars int64
	UpdatedAt  time.Time
}

func (b Book) Validate() error {
	if strings.TrimSpace(b.SourceID) == "" {
		return fmt.Errorf("source id is required")
	}
	if b.CurrChars < 0 {
		return fmt.Errorf("character offset must be non-negative")
	}
	if b.TotalChars < 0 {
		return fmt.Errorf("total characters must be non-negative")
	}
	return nil
}

// Percent is the read fraction in [0, 100]; 0 when the length is unknown.
func (b Book) Percent() float64 {
	if b.TotalChars <= 0 {
		return 0
	}
	pct := float64(b.CurrChars) / float64(b.TotalChars) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
