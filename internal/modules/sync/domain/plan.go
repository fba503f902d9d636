package domain

import "sort"

// Winner says which copy of a record survives a merge.
type Winner int

const (
	Same Winner = iota
	LocalWins
	RemoteWins
)

// CompareSessions applies last-writer-wins by recency. Equal recency with
// different content goes to the remote copy.
func CompareSessions(local, remote SessionRecord) Winner {
	if local.Equal(remote) {
		return Same
	}
	if local.Recency().After(remote.Recency()) {
		return LocalWins
	}
	return RemoteWins
}

func CompareProgress(local, remote ProgressRecord) Winner {
	if local.Equal(remote) {
		return Same
	}
	if local.UpdatedAt.After(remote.UpdatedAt) {
		return LocalWins
	}
	return RemoteWins
}

// SessionPull is a remote copy to store locally. Expected is the local copy
// the decision was based on, nil when the record is new here.
type SessionPull struct {
	Record   SessionRecord
	Expected *SessionRecord
}

type ProgressPull struct {
	Record   ProgressRecord
	Expected *ProgressRecord
}

type SessionPlan struct {
	Push     []SessionRecord
	Pull     []SessionPull
	Clean    []SessionRecord
	Excluded int
}

type ProgressPlan struct {
	Push  []ProgressRecord
	Pull  []ProgressPull
	Clean []ProgressRecord
}

// PlanSessions merges local and remote sets. The session with id exclude is
// left alone entirely: it belongs to the running lifecycle.
func PlanSessions(local []LocalSession, remote []SessionRecord, exclude string) SessionPlan {
	plan := SessionPlan{}
	remoteByID := make(map[string]SessionRecord, len(remote))
	for _, r := range remote {
		remoteByID[r.ID] = r
	}
	seen := make(map[string]bool, len(local))
	for _, l := range local {
		seen[l.Record.ID] = true
		if exclude != "" && l.Record.ID == exclude {
			plan.Excluded++
			continue
		}
		r, ok := remoteByID[l.Record.ID]
		if !ok {
			plan.Push = append(plan.Push, l.Record)
			continue
		}
		switch CompareSessions(l.Record, r) {
		case Same:
			if l.Dirty {
				plan.Clean = append(plan.Clean, l.Record)
			}
		case LocalWins:
			plan.Push = append(plan.Push, l.Record)
		case RemoteWins:
			expected := l.Record
			plan.Pull = append(plan.Pull, SessionPull{Record: r, Expected: &expected})
		}
	}
	for _, r := range remote {
		if seen[r.ID] {
			continue
		}
		if exclude != "" && r.ID == exclude {
			plan.Excluded++
			continue
		}
		plan.Pull = append(plan.Pull, SessionPull{Record: r})
	}
	sort.Slice(plan.Push, func(i, j int) bool { return plan.Push[i].ID < plan.Push[j].ID })
	sort.Slice(plan.Pull, func(i, j int) bool { return plan.Pull[i].Record.ID < plan.Pull[j].Record.ID })
	return plan
}

func PlanProgress(local []LocalProgress, remote []ProgressRecord) ProgressPlan {
	plan := ProgressPlan{}
	remoteByID := make(map[string]ProgressRecord, len(remote))
	for _, r := range remote {
		remoteByID[r.SourceID] = r
	}
	seen := make(map[string]bool, len(local))
	for _, l := range local {
		seen[l.Record.SourceID] = true
		r, ok := remoteByID[l.Record.SourceID]
		if !ok {
			plan.Push = append(plan.Push, l.Record)
			continue
		}
		switch CompareProgress(l.Record, r) {
		case Same:
			if l.Dirty {
				plan.Clean = append(plan.Clean, l.Record)
			}
		case LocalWins:
			plan.Push = append(plan.Push, l.Record)
		case RemoteWins:
			expected := l.Record
			plan.Pull = append(plan.Pull, ProgressPull{Record: r, Expected: &expected})
		}
	}
	for _, r := range remote {
		if !seen[r.SourceID] {
			plan.Pull = append(plan.Pull, ProgressPull{Record: r})
		}
	}
	return plan
}

// ResolvePushedSessions turns the hub's canonical answers into local effects.
// A canonical copy equal to what was pushed only clears the dirty flag; a
// different one replaces the pushed version locally.
func ResolvePushedSessions(pushed, canonical []SessionRecord) (clean []SessionRecord, pull []SessionPull) {
	byID := make(map[string]SessionRecord, len(canonical))
	for _, c := range canonical {
		byID[c.ID] = c
	}
	for _, p := range pushed {
		c, ok := byID[p.ID]
		if !ok {
			continue
		}
		if c.Equal(p) {
			clean = append(clean, p)
			continue
		}
		expected := p
		pull = append(pull, SessionPull{Record: c, Expected: &expected})
	}
	return clean, pull
}

func ResolvePushedProgress(pushed, canonical []ProgressRecord) (clean []ProgressRecord, pull []ProgressPull) {
	byID := make(map[string]ProgressRecord, len(canonical))
	for _, c := range canonical {
		byID[c.SourceID] = c
	}
	for _, p := range pushed {
		c, ok := byID[p.SourceID]
		if !ok {
			continue
		}
		if c.Equal(p) {
			clean = append(clean, p)
			continue
		}
		expected := p
		pull = append(pull, ProgressPull{Record: c, Expected: &expected})
	}
	return clean, pull
}
