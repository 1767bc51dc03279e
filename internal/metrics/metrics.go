package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the player's counters. The hot paths only touch the atomics;
// the prometheus collectors read them on demand.
type Metrics struct {
	// Presentation
	FramesPresented atomic.Uint64
	TickOverruns    atomic.Uint64
	LastTickMicros  atomic.Uint64

	// Audio streaming
	BuffersRefilled atomic.Uint64
	SourceWraps     atomic.Uint64
	AudioUnderruns  atomic.Uint64
	AudioDegraded   atomic.Uint64 // 0 = audio playing, 1 = running without audio

	registry   *prometheus.Registry
	collectors map[string]prometheus.Collector
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	FramesPresented uint64
	TickOverruns    uint64
	LastTick        time.Duration
	BuffersRefilled uint64
	SourceWraps     uint64
	AudioUnderruns  uint64
	AudioDegraded   bool
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry:   prometheus.NewRegistry(),
		collectors: make(map[string]prometheus.Collector),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	m.counter("arisloop_frames_presented_total", "Frames copied to the display and swapped", &m.FramesPresented)
	m.counter("arisloop_tick_overruns_total", "Ticks that took longer than the nominal cadence", &m.TickOverruns)
	m.counter("arisloop_audio_buffers_refilled_total", "Audio buffers refilled and resubmitted", &m.BuffersRefilled)
	m.counter("arisloop_audio_source_wraps_total", "Times the sample source restarted from the beginning", &m.SourceWraps)
	m.counter("arisloop_audio_underruns_total", "Playback reads that found no queued audio", &m.AudioUnderruns)
	m.gauge("arisloop_last_tick_microseconds", "Duration of the last presentation tick", &m.LastTickMicros)
	m.gauge("arisloop_audio_degraded", "1 when running without an audio device", &m.AudioDegraded)
}

func (m *Metrics) counter(name, help string, v *atomic.Uint64) {
	c := prometheus.NewCounterFunc(
		prometheus.CounterOpts{Name: name, Help: help},
		func() float64 { return float64(v.Load()) },
	)
	m.registry.MustRegister(c)
	m.collectors[name] = c
}

func (m *Metrics) gauge(name, help string, v *atomic.Uint64) {
	g := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		func() float64 { return float64(v.Load()) },
	)
	m.registry.MustRegister(g)
	m.collectors[name] = g
}

// Registry returns the registry all collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Collector returns the collector registered under name, or nil.
func (m *Metrics) Collector(name string) prometheus.Collector {
	return m.collectors[name]
}

// ObserveTick records one presented frame and how long its tick took.
func (m *Metrics) ObserveTick(elapsed, cadence time.Duration) {
	m.FramesPresented.Add(1)
	m.LastTickMicros.Store(uint64(elapsed.Microseconds()))
	if elapsed > cadence {
		m.TickOverruns.Add(1)
	}
}

// SetAudioDegraded flags that audio is unavailable.
func (m *Metrics) SetAudioDegraded(degraded bool) {
	if degraded {
		m.AudioDegraded.Store(1)
	} else {
		m.AudioDegraded.Store(0)
	}
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		FramesPresented: m.FramesPresented.Load(),
		TickOverruns:    m.TickOverruns.Load(),
		LastTick:        time.Duration(m.LastTickMicros.Load()) * time.Microsecond,
		BuffersRefilled: m.BuffersRefilled.Load(),
		SourceWraps:     m.SourceWraps.Load(),
		AudioUnderruns:  m.AudioUnderruns.Load(),
		AudioDegraded:   m.AudioDegraded.Load() == 1,
	}
}

// Dump gathers the registry and returns one "name value" line per metric,
// sorted by name.
func (m *Metrics) Dump() ([]string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			v := metric.GetCounter().GetValue()
			if g := metric.GetGauge(); g != nil {
				v = g.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s %g", f.GetName(), v))
		}
	}
	return lines, nil
}
