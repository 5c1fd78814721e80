package heartbeat

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateDisabled = "disabled"
	StateStopped  = "stopped"
)

// Component names reported by the runtime.
const (
	ComponentCompletion = "completion"
	ComponentImage      = "image"
	ComponentStore      = "session_store"
	ComponentHTTP       = "http"
	ComponentWatcher    = "template_watcher"
)

// Reporter records the state of a collaborator. The chat engine reports
// every completion and image call through it.
type Reporter interface {
	Starting(component, message string)
	Beat(component, message string)
	Degrade(component, message string, err error)
	Disabled(component, message string)
	Stopped(component, message string)
}

type ComponentStatus struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	Calls         int64  `json:"calls,omitempty"`
	Failures      int64  `json:"failures,omitempty"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

type Snapshot struct {
	Overall    string            `json:"overall"`
	Components []ComponentStatus `json:"components"`
}

type componentRecord struct {
	state     string
	message   string
	lastError string
	calls     int64
	failures  int64
	updatedAt time.Time
}

type Registry struct {
	mu         sync.RWMutex
	components map[string]componentRecord
}

var _ Reporter = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		components: map[string]componentRecord{},
	}
}

func (r *Registry) Starting(component, message string) {
	r.update(component, StateStarting, message, "", false)
}

// Beat marks a successful call.
func (r *Registry) Beat(component, message string) {
	r.update(component, StateHealthy, message, "", true)
}

// Degrade marks a failed call. The component recovers on its next Beat.
func (r *Registry) Degrade(component, message string, err error) {
	errorText := ""
	if err != nil {
		errorText = err.Error()
	}
	r.update(component, StateDegraded, message, errorText, true)
}

func (r *Registry) Disabled(component, message string) {
	r.update(component, StateDisabled, message, "", false)
}

func (r *Registry) Stopped(component, message string) {
	r.update(component, StateStopped, message, "", false)
}

func (r *Registry) update(component, state, message, errorText string, call bool) {
	name := strings.ToLower(strings.TrimSpace(component))
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.components[name]
	record.state = state
	record.message = strings.TrimSpace(message)
	record.lastError = strings.TrimSpace(errorText)
	record.updatedAt = time.Now().UTC()
	if call {
		record.calls++
		if state == StateDegraded {
			record.failures++
		}
	}
	r.components[name] = record
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]ComponentStatus, 0, len(r.components))
	for name, record := range r.components {
		results = append(results, ComponentStatus{
			Name:          name,
			State:         record.state,
			Message:       record.message,
			Error:         record.lastError,
			Calls:         record.calls,
			Failures:      record.failures,
			UpdatedAtUnix: record.updatedAt.Unix(),
		})
	}
	sort.Slice(results, func(left, right int) bool {
		return results[left].Name < results[right].Name
	})

	return Snapshot{
		Overall:    computeOverall(results),
		Components: results,
	}
}

func computeOverall(items []ComponentStatus) string {
	if len(items) == 0 {
		return "unknown"
	}
	hasStarting := false
	allInactive := true
	for _, item := range items {
		switch item.State {
		case StateDegraded:
			return StateDegraded
		case StateStarting:
			hasStarting = true
			allInactive = false
		case StateDisabled, StateStopped:
		default:
			allInactive = false
		}
	}
	if hasStarting {
		return StateStarting
	}
	if allInactive {
		return "idle"
	}
	return StateHealthy
}

// Discard is a Reporter that records nothing.
type Discard struct{}

func (Discard) Starting(string, string)       {}
func (Discard) Beat(string, string)           {}
func (Discard) Degrade(string, string, error) {}
func (Discard) Disabled(string, string)       {}
func (Discard) Stopped(string, string)        {}
