package timeline

import (
	"time"
)

type (
	// Alert is a message shown to the user for a while. Alerts with the same
	// non-empty Name replace each other, so a repeating condition shows up
	// only once.
	Alert struct {
		Name      string
		Priority  AlertPriority
		Message   string
		Duration  time.Duration
		FadeLevel float64
	}

	AlertPriority int

	Alerts Model
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

// Alerts returns the Alerts view of the model.
func (m *Model) Alerts() *Alerts { return (*Alerts)(m) }

// Iterate yields the alerts from the lowest to the highest priority.
func (m *Alerts) Iterate(yield func(index int, alert Alert) bool) {
	for i, a := range m.alerts {
		if !yield(i, a) {
			return
		}
	}
}

func (m *Alerts) Len() int { return len(m.alerts) }

// Update ages the alerts by d, dropping the ones that have expired. It
// reports whether any alert is still fading in or out.
func (m *Alerts) Update(d time.Duration) (animating bool) {
	for i := len(m.alerts) - 1; i >= 0; i-- {
		if m.alerts[i].Duration >= d {
			m.alerts[i].Duration -= d
			if m.alerts[i].FadeLevel < 1 {
				animating = true
				m.alerts[i].FadeLevel = min(m.alerts[i].FadeLevel+float64(d)/float64(300*time.Millisecond), 1)
			}
		} else {
			m.alerts[i].Duration = 0
			m.alerts[i].FadeLevel = max(m.alerts[i].FadeLevel-float64(d)/float64(300*time.Millisecond), 0)
			if m.alerts[i].FadeLevel > 0 {
				animating = true
			} else {
				m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			}
		}
	}
	return
}

func (m *Alerts) Add(message string, priority AlertPriority) {
	m.AddAlert(Alert{Priority: priority, Message: message, Duration: defaultAlertDuration})
}

func (m *Alerts) AddNamed(name, message string, priority AlertPriority) {
	m.AddAlert(Alert{Name: name, Priority: priority, Message: message, Duration: defaultAlertDuration})
}

// ClearNamed drops the alert with the given name, if any.
func (m *Alerts) ClearNamed(name string) {
	for i := range m.alerts {
		if m.alerts[i].Name == name {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return
		}
	}
}

func (m *Alerts) AddAlert(a Alert) {
	if a.Name != "" {
		for i := range m.alerts {
			if m.alerts[i].Name == a.Name {
				a.FadeLevel = m.alerts[i].FadeLevel
				m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
				break
			}
		}
	}
	// keep sorted by priority, newest last among equals
	i := len(m.alerts)
	for i > 0 && m.alerts[i-1].Priority > a.Priority {
		i--
	}
	m.alerts = append(m.alerts, Alert{})
	copy(m.alerts[i+1:], m.alerts[i:])
	m.alerts[i] = a
}
