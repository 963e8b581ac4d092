package core

import (
	"encoding/json"
	"hash"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"sync"
)

// Assigns is a component's view model: the values its template reads.
// Every Set is fingerprinted so the router can tell whether a render is
// needed.
type Assigns struct {
	mu      sync.RWMutex
	values  map[string]any
	tracker *ChangeTracker
}

// NewAssigns creates an empty assigns store.
func NewAssigns() *Assigns {
	return &Assigns{
		values:  make(map[string]any),
		tracker: NewChangeTracker(),
	}
}

// Get returns the value stored under key, or nil.
func (a *Assigns) Get(key string) any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.values[key]
}

// GetString returns the string under key, or "".
func (a *Assigns) GetString(key string) string {
	s, _ := a.Get(key).(string)
	return s
}

// GetInt returns the int under key, or 0.
func (a *Assigns) GetInt(key string) int {
	n, _ := a.Get(key).(int)
	return n
}

// Set stores value under key. Storing a value equal to the current one is
// not recorded as a change.
func (a *Assigns) Set(key string, value any) {
	a.mu.Lock()
	a.values[key] = value
	a.mu.Unlock()

	a.tracker.Track(key, value)
}

// Tracker returns the change tracker.
func (a *Assigns) Tracker() *ChangeTracker {
	return a.tracker
}

// AssignsRenderer is implemented by components whose Render output depends
// only on their assigns. The router skips rendering them when no assign
// changed since the previous diff.
type AssignsRenderer interface {
	Assigns() *Assigns
	RendersFromAssigns()
}

// ChangeTracker keeps a fingerprint of the last value written to each key
// and the set of keys whose fingerprint moved since the last Collect.
type ChangeTracker struct {
	mu      sync.Mutex
	prints  map[string]uint64
	dirty   map[string]struct{}
	version uint64
}

// NewChangeTracker creates an empty tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{
		prints: make(map[string]uint64),
		dirty:  make(map[string]struct{}),
	}
}

// Track records a write to key.
func (ct *ChangeTracker) Track(key string, value any) {
	fp := fingerprint(value)

	ct.mu.Lock()
	defer ct.mu.Unlock()
	if prev, seen := ct.prints[key]; seen && prev == fp {
		return
	}
	ct.prints[key] = fp
	ct.dirty[key] = struct{}{}
}

// HasChanges reports whether any key changed since the last Collect.
func (ct *ChangeTracker) HasChanges() bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return len(ct.dirty) > 0
}

// Collect returns the changed keys in sorted order and starts a new
// generation.
func (ct *ChangeTracker) Collect() []string {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	keys := make([]string, 0, len(ct.dirty))
	for k := range ct.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clear(ct.dirty)
	ct.version++
	return keys
}

// Version counts Collect calls.
func (ct *ChangeTracker) Version() uint64 {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.version
}

func fingerprint(v any) uint64 {
	h := fnv.New64a()
	writeValue(h, v)
	return h.Sum64()
}

// writeValue feeds v into h with a type tag so that, for example, "1" and 1
// do not collide.
func writeValue(h hash.Hash64, v any) {
	var scratch []byte
	switch val := v.(type) {
	case nil:
		h.Write([]byte{'n'})
	case string:
		h.Write([]byte{'s'})
		h.Write([]byte(val))
	case bool:
		h.Write([]byte{'b'})
		h.Write([]byte(strconv.FormatBool(val)))
	case int:
		h.Write([]byte{'i'})
		h.Write(strconv.AppendInt(scratch, int64(val), 10))
	case float64:
		h.Write([]byte{'f'})
		h.Write(strconv.AppendUint(scratch, math.Float64bits(val), 16))
	case []string:
		h.Write([]byte{'l'})
		for _, s := range val {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	case map[string]string:
		h.Write([]byte{'m'})
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{0})
			h.Write([]byte(val[k]))
			h.Write([]byte{0})
		}
	default:
		// encoding/json sorts map keys, so equal values encode equally.
		data, _ := json.Marshal(val)
		h.Write([]byte{'j'})
		h.Write(data)
	}
}
