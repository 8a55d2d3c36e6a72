package health

import (
	"sync/atomic"
	"time"
)

// State: состояние цикла для /readyz и /healthz.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastTickUnix atomic.Int64 // unix seconds
	cycles       atomic.Int64
	failures     atomic.Int64
	lastError    atomic.Value // string
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	s.lastError.Store("")
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// CycleDone отмечает завершённый цикл; err == nil сбрасывает последнюю ошибку.
func (s *State) CycleDone(t time.Time, err error) {
	s.lastTickUnix.Store(t.Unix())
	s.cycles.Add(1)
	if err != nil {
		s.failures.Add(1)
		s.lastError.Store(err.Error())
		return
	}
	s.lastError.Store("")
}

func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Cycles() int64     { return s.cycles.Load() }
func (s *State) Failures() int64   { return s.failures.Load() }
func (s *State) LastError() string { return s.lastError.Load().(string) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
