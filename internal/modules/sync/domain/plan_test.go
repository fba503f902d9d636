package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func session(id string, lastActive int, chars int64) SessionRecord {
	return SessionRecord{
		ID:             id,
		SourceID:       "dune",
		CurrChars:      chars,
		StartTime:      base,
		LastActiveTime: base.Add(time.Duration(lastActive) * time.Second),
	}
}

func TestPlanSessionsLastWriterWinsWholeRecord(t *testing.T) {
	t.Parallel()
	localNewer := session("a", 100, 500)
	remoteOlder := session("a", 50, 900)
	remoteOlder.TotalReadingTime = 999

	localOlder := session("b", 10, 100)
	remoteNewer := session("b", 20, 50)

	plan := PlanSessions(
		[]LocalSession{{Record: localNewer, Dirty: true}, {Record: localOlder}},
		[]SessionRecord{remoteOlder, remoteNewer},
		"",
	)
	require.Len(t, plan.Push, 1)
	assert.Equal(t, localNewer, plan.Push[0])

	require.Len(t, plan.Pull, 1)
	assert.Equal(t, remoteNewer, plan.Pull[0].Record)
	require.NotNil(t, plan.Pull[0].Expected)
	assert.Equal(t, localOlder, *plan.Pull[0].Expected)
}

func TestPlanSessionsTieGoesToRemote(t *testing.T) {
	t.Parallel()
	local := session("a", 30, 100)
	remote := session("a", 30, 200)

	plan := PlanSessions([]LocalSession{{Record: local, Dirty: true}}, []SessionRecord{remote}, "")
	assert.Empty(t, plan.Push)
	require.Len(t, plan.Pull, 1)
	assert.Equal(t, int64(200), plan.Pull[0].Record.CurrChars)
}

func TestPlanSessionsUsesEndTimeForRecency(t *testing.T) {
	t.Parallel()
	local := session("a", 30, 100)
	end := base.Add(90 * time.Second)
	local.EndTime = &end
	remote := session("a", 60, 100)

	plan := PlanSessions([]LocalSession{{Record: local}}, []SessionRecord{remote}, "")
	require.Len(t, plan.Push, 1)
	assert.Empty(t, plan.Pull)
}

func TestPlanSessionsOneSidedAndExcluded(t *testing.T) {
	t.Parallel()
	plan := PlanSessions(
		[]LocalSession{
			{Record: session("local-only", 10, 1), Dirty: true},
			{Record: session("active", 10, 1), Dirty: true},
			{Record: session("synced", 10, 1), Dirty: true},
		},
		[]SessionRecord{session("remote-only", 5, 1), session("active", 99, 7), session("synced", 10, 1)},
		"active",
	)
	require.Len(t, plan.Push, 1)
	assert.Equal(t, "local-only", plan.Push[0].ID)
	require.Len(t, plan.Pull, 1)
	assert.Equal(t, "remote-only", plan.Pull[0].Record.ID)
	assert.Nil(t, plan.Pull[0].Expected)
	require.Len(t, plan.Clean, 1)
	assert.Equal(t, "synced", plan.Clean[0].ID)
	assert.Equal(t, 1, plan.Excluded)
}

func TestResolvePushedSessions(t *testing.T) {
	t.Parallel()
	accepted := session("a", 10, 1)
	rejected := session("b", 10, 1)
	winner := session("b", 20, 5)

	clean, pull := ResolvePushedSessions([]SessionRecord{accepted, rejected}, []SessionRecord{accepted, winner})
	require.Len(t, clean, 1)
	assert.Equal(t, "a", clean[0].ID)
	require.Len(t, pull, 1)
	assert.Equal(t, winner, pull[0].Record)
	assert.Equal(t, rejected, *pull[0].Expected)
}

func TestPlanProgressByUpdatedAt(t *testing.T) {
	t.Parallel()
	local := ProgressRecord{SourceID: "dune", Title: "Dune", CurrChars: 900, UpdatedAt: base.Add(time.Minute)}
	remote := ProgressRecord{SourceID: "dune", Title: "Dune", CurrChars: 400, UpdatedAt: base}
	tie := ProgressRecord{SourceID: "solaris", Title: "Solaris", CurrChars: 1, UpdatedAt: base}
	tieRemote := ProgressRecord{SourceID: "solaris", Title: "Solaris", CurrChars: 2, UpdatedAt: base}

	plan := PlanProgress(
		[]LocalProgress{{Record: local, Dirty: true}, {Record: tie, Dirty: true}},
		[]ProgressRecord{remote, tieRemote},
	)
	require.Len(t, plan.Push, 1)
	assert.Equal(t, "dune", plan.Push[0].SourceID)
	require.Len(t, plan.Pull, 1)
	assert.Equal(t, int64(2), plan.Pull[0].Record.CurrChars)
}
