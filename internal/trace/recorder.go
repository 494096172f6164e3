package trace

import (
	"context"
	"fmt"

	"github.com/roach88/weft/internal/pattern"
)

// Recorder implements convert.Observer, buffering the observed command
// stream during a conversion. After a successful conversion the caller
// commits the buffer to a Store together with the finished
// representation's fingerprint.
//
// The recorder buffers in memory rather than writing per event: a failed
// conversion must leave no partial run behind.
type Recorder struct {
	clock    *Clock
	events   []Event
	outputs  int
	outcomes int
	done     bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{clock: NewClock()}
}

// Command buffers one observed command event.
func (r *Recorder) Command(pos int, cmd pattern.Command) {
	r.events = append(r.events, Event{
		Seq:     r.clock.Next(),
		Pos:     pos,
		Command: cmd.String(),
	})
}

// Finalized marks the conversion complete.
func (r *Recorder) Finalized(outputs, outcomes int) {
	r.outputs = outputs
	r.outcomes = outcomes
	r.done = true
}

// Events returns the buffered events in clock order.
func (r *Recorder) Events() []Event { return r.events }

// Commit writes the buffered run to the store. The conversion must have
// finalized; committing an unfinished recording is an error.
func (r *Recorder) Commit(ctx context.Context, s *Store, gen RunIDGenerator, patternHash, backend, fp string) (*Run, error) {
	if !r.done {
		return nil, fmt.Errorf("trace: conversion did not finalize; nothing to commit")
	}
	run := Run{
		ID:          gen.Generate(),
		PatternHash: patternHash,
		Backend:     backend,
		Fingerprint: fp,
		Outputs:     r.outputs,
		Outcomes:    r.outcomes,
		FinalSeq:    r.clock.Current(),
	}
	events := make([]Event, len(r.events))
	copy(events, r.events)
	for i := range events {
		events[i].RunID = run.ID
	}
	if err := s.WriteRun(ctx, run, events); err != nil {
		return nil, err
	}
	return &run, nil
}
