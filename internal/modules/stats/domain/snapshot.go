package domain

import (
	"sort"
	"time"
)

type SessionFact struct {
	ID               string
	SourceID         string
	CharsRead        int64
	TotalReadingTime int64
	State            string
}

type BookFact struct {
	SourceID   string
	Title      string
	CurrChars  int64
	TotalChars int64
	Percent    float64
}

type BookLine struct {
	BookFact
	Sessions    int
	ReadingTime int64
}

type ActiveLine struct {
	SessionFact
	Title string
}

type SyncLine struct {
	IsSyncing  bool
	Error      string
	LastSyncAt time.Time
	Pending    int
}

// Snapshot is the dashboard view of everything read so far.
type Snapshot struct {
	Sessions         int
	TotalReadingTime int64
	CharsRead        int64
	Books            []BookLine
	Active           *ActiveLine
	Sync             SyncLine
	Connectivity     string
	ComputedAt       time.Time
}

// Build folds sessions into per-book lines. Books with recorded sessions but
// no ledger entry still get a line, titled by their source id. Lines are
// ordered by reading time, most read first.
func Build(sessions []SessionFact, books []BookFact, active *SessionFact) Snapshot {
	lines := map[string]*BookLine{}
	order := []string{}
	line := func(sourceID string) *BookLine {
		if l, ok := lines[sourceID]; ok {
			return l
		}
		l := &BookLine{BookFact: BookFact{SourceID: sourceID, Title: sourceID}}
		lines[sourceID] = l
		order = append(order, sourceID)
		return l
	}
	for _, book := range books {
		line(book.SourceID).BookFact = book
	}

	snap := Snapshot{}
	for _, s := range sessions {
		snap.Sessions++
		snap.TotalReadingTime += s.TotalReadingTime
		snap.CharsRead += s.CharsRead
		l := line(s.SourceID)
		l.Sessions++
		l.ReadingTime += s.TotalReadingTime
	}

	snap.Books = make([]BookLine, 0, len(order))
	for _, id := range order {
		snap.Books = append(snap.Books, *lines[id])
	}
	sort.SliceStable(snap.Books, func(i, j int) bool {
		return snap.Books[i].ReadingTime > snap.Books[j].ReadingTime
	})

	if active != nil {
		snap.Active = &ActiveLine{SessionFact: *active, Title: active.SourceID}
		if l, ok := lines[active.SourceID]; ok {
			snap.Active.Title = l.Title
		}
	}
	return snap
}
