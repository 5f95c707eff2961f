package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	updateCount  map[string]int64
	claimCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		updateCount:  make(map[string]int64),
		claimCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordUpdate counts inbound bot updates per intent kind.
func (m *Metrics) RecordUpdate(intent string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCount[intent]++
}

// RecordClaim counts claim attempts per outcome.
func (m *Metrics) RecordClaim(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimCount[outcome]++
}

// Snapshot returns copies of the bot counters for reporting.
func (m *Metrics) Snapshot() (updates, claims map[string]int64) {
	updates = make(map[string]int64)
	claims = make(map[string]int64)
	if m == nil {
		return updates, claims
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.updateCount {
		updates[k] = v
	}
	for k, v := range m.claimCount {
		claims[k] = v
	}
	return updates, claims
}
