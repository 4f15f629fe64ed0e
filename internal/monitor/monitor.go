// Package monitor implements the compliance alert loop: it polls the type
// registry on a fixed interval and surfaces checklist types whose
// certification has lapsed, with a per-operator snooze so nobody is
// re-alerted during a bounded grace period. Snooze state lives only here;
// it never touches the session or validity data.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/checklist"
)

// TypeLister is the slice of the checklist service the monitor needs.
type TypeLister interface {
	ListTypes() ([]checklist.TypeOverview, error)
}

// AlertFunc receives the non-snoozed lapsed types found by one poll.
type AlertFunc func(expired []checklist.TypeOverview)

// Monitor polls a TypeLister and raises alerts for expired or never-done
// checklist types. Poll failures are deliberately non-fatal: a failed poll
// simply retries next interval.
type Monitor struct {
	lister   TypeLister
	interval time.Duration
	alert    AlertFunc

	mu      sync.Mutex
	snoozes map[snoozeKey]time.Time
	now     func() time.Time
}

type snoozeKey struct {
	Actor    string
	TypeCode string
}

// New builds a monitor. interval <= 0 falls back to 60 seconds.
func New(lister TypeLister, interval time.Duration, alert AlertFunc) *Monitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Monitor{
		lister:   lister,
		interval: interval,
		alert:    alert,
		snoozes:  make(map[snoozeKey]time.Time),
		now:      time.Now,
	}
}

// Run polls until ctx is cancelled. It checks once immediately, then on
// every tick.
func (m *Monitor) Run(ctx context.Context) {
	m.Check("")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check("")
		}
	}
}

// Check performs one poll for the given actor and invokes the alert callback
// with the lapsed, non-snoozed types. Returns what it alerted on so callers
// can poll synchronously.
func (m *Monitor) Check(actor string) []checklist.TypeOverview {
	types, err := m.lister.ListTypes()
	if err != nil {
		log.Printf("checklist monitor: poll failed: %v", err)
		return nil
	}

	var lapsed []checklist.TypeOverview
	for _, t := range types {
		if t.IsValid {
			continue
		}
		if m.Snoozed(actor, t.Code) {
			continue
		}
		lapsed = append(lapsed, t)
	}
	if len(lapsed) > 0 && m.alert != nil {
		m.alert(lapsed)
	}
	return lapsed
}

// Snooze suppresses alerts for one type and actor until now + d.
func (m *Monitor) Snooze(actor, typeCode string, d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snoozes[snoozeKey{Actor: actor, TypeCode: typeCode}] = m.now().Add(d)
}

// Snoozed reports whether alerts for the type are currently muted for the
// actor. Expired entries are pruned on the way out.
func (m *Monitor) Snoozed(actor, typeCode string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := snoozeKey{Actor: actor, TypeCode: typeCode}
	deadline, ok := m.snoozes[key]
	if !ok {
		return false
	}
	if m.now().After(deadline) {
		delete(m.snoozes, key)
		return false
	}
	return true
}
