package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string) (Run, []Event) {
	run := Run{
		ID:          id,
		PatternHash: "abc123",
		Backend:     "dataflow",
		Fingerprint: "def456",
		Outputs:     1,
		Outcomes:    2,
		FinalSeq:    3,
	}
	events := []Event{
		{RunID: id, Seq: 1, Pos: 0, Command: "N(1)"},
		{RunID: id, Seq: 2, Pos: 1, Command: "E(0,1)"},
		{RunID: id, Seq: 3, Pos: 2, Command: "M(0,XY,0,{})"},
	}
	return run, events
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s1, err := Open(path)
	require.NoError(t, err)
	run, events := sampleRun("run-1")
	require.NoError(t, s1.WriteRun(context.Background(), run, events))
	require.NoError(t, s1.Close())

	// Reopening applies the schema again without clobbering data.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)
}

func TestWriteRun_ReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, events := sampleRun("run-1")
	require.NoError(t, s.WriteRun(ctx, run, events))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)

	gotEvents, err := s.ReadEvents(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, events, gotEvents)
}

func TestWriteRun_DuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, events := sampleRun("run-1")
	require.NoError(t, s.WriteRun(ctx, run, events))
	err := s.WriteRun(ctx, run, events)
	require.Error(t, err)
}

func TestWriteRun_Atomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, events := sampleRun("run-1")
	// A duplicate seq violates the events primary key mid-transaction;
	// the run row must roll back with it.
	events = append(events, Event{RunID: "run-1", Seq: 1, Pos: 9, Command: "N(9)"})
	require.Error(t, s.WriteRun(ctx, run, events))

	_, err := s.ReadRun(ctx, "run-1")
	assert.Error(t, err)
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadEvents_OrderedBySeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, _ := sampleRun("run-1")
	// Insert out of clock order; reads must come back sorted.
	events := []Event{
		{RunID: "run-1", Seq: 3, Pos: 2, Command: "M(0,XY,0,{})"},
		{RunID: "run-1", Seq: 1, Pos: 0, Command: "N(1)"},
		{RunID: "run-1", Seq: 2, Pos: 1, Command: "E(0,1)"},
	}
	require.NoError(t, s.WriteRun(ctx, run, events))

	got, err := s.ReadEvents(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, int64(3), got[2].Seq)
}

func TestReadEvents_EmptyRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, _ := sampleRun("run-1")
	require.NoError(t, s.WriteRun(ctx, run, nil))

	events, err := s.ReadEvents(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListRuns_FiltersByHashOrderedByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-b", "run-a"} {
		run, _ := sampleRun(id)
		require.NoError(t, s.WriteRun(ctx, run, nil))
	}
	other, _ := sampleRun("run-c")
	other.PatternHash = "other"
	require.NoError(t, s.WriteRun(ctx, other, nil))

	runs, err := s.ListRuns(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-a", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)

	none, err := s.ListRuns(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
