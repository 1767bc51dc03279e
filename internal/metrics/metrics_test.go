package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTick(t *testing.T) {
	m := New()
	cadence := 40 * time.Millisecond

	m.ObserveTick(10*time.Millisecond, cadence)
	m.ObserveTick(55*time.Millisecond, cadence)

	s := m.Snapshot()
	if s.FramesPresented != 2 {
		t.Errorf("frames: got %d, want 2", s.FramesPresented)
	}
	if s.TickOverruns != 1 {
		t.Errorf("overruns: got %d, want 1", s.TickOverruns)
	}
	if s.LastTick != 55*time.Millisecond {
		t.Errorf("last tick: got %v, want 55ms", s.LastTick)
	}
}

func TestCollectorsReadAtomics(t *testing.T) {
	m := New()
	m.BuffersRefilled.Add(3)
	m.SourceWraps.Add(1)
	m.SetAudioDegraded(true)

	if got := testutil.ToFloat64(m.Collector("arisloop_audio_buffers_refilled_total")); got != 3 {
		t.Errorf("refilled: got %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Collector("arisloop_audio_source_wraps_total")); got != 1 {
		t.Errorf("wraps: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Collector("arisloop_audio_degraded")); got != 1 {
		t.Errorf("degraded: got %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(m.Registry())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 7 {
		t.Errorf("metric count: got %d, want 7", n)
	}
}

func TestDump(t *testing.T) {
	m := New()
	m.FramesPresented.Add(3)
	m.SetAudioDegraded(true)

	lines, err := m.Dump()
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7: %v", len(lines), lines)
	}
	want := map[string]bool{
		"arisloop_frames_presented_total 3": false,
		"arisloop_audio_degraded 1":         false,
	}
	for _, l := range lines {
		if _, ok := want[l]; ok {
			want[l] = true
		}
	}
	for l, seen := range want {
		if !seen {
			t.Errorf("missing %q in %v", l, lines)
		}
	}
}
