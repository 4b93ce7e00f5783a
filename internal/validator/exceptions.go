package validator

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/staffscan/internal/model"
	"github.com/titanous/json5"
)

// Exceptions holds operator overrides keyed by name key. Changes made since
// construction are tracked so callers can persist only what is new.
type Exceptions struct {
	mu      sync.RWMutex
	entries map[string]model.NameException
	changed map[string]bool
}

// NewExceptions returns overrides seeded with entries.
func NewExceptions(entries ...model.NameException) *Exceptions {
	e := &Exceptions{
		entries: make(map[string]model.NameException, len(entries)),
		changed: make(map[string]bool),
	}
	for _, entry := range entries {
		if entry.Key == "" {
			entry.Key = model.NameKeyFromFull(entry.Name)
		}
		if entry.Key != "" {
			e.entries[entry.Key] = entry
		}
	}
	return e
}

// Lookup returns whether the key is forced valid and whether an override exists.
func (e *Exceptions) Lookup(key string) (include, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.entries[key]
	return entry.Include, ok
}

// Include forces a name valid, replacing any exclusion.
func (e *Exceptions) Include(first, last string) {
	e.set(first, last, true)
}

// Exclude forces a name invalid, replacing any inclusion.
func (e *Exceptions) Exclude(first, last string) {
	e.set(first, last, false)
}

func (e *Exceptions) set(first, last string, include bool) {
	key := model.NameKey(first, last)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries[key] = model.NameException{
		Key:       key,
		Name:      strings.TrimSpace(first + " " + last),
		Include:   include,
		UpdatedAt: time.Now().UTC(),
	}
	e.changed[key] = true
}

// Len returns the number of overrides.
func (e *Exceptions) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// All returns every override ordered by key.
func (e *Exceptions) All() []model.NameException {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.NameException, 0, len(e.entries))
	for _, entry := range e.entries {
		out = append(out, entry)
	}
	sortExceptions(out)
	return out
}

// Changed returns the overrides added or replaced since construction.
func (e *Exceptions) Changed() []model.NameException {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.NameException, 0, len(e.changed))
	for key := range e.changed {
		out = append(out, e.entries[key])
	}
	sortExceptions(out)
	return out
}

func sortExceptions(s []model.NameException) {
	sort.Slice(s, func(i, j int) bool { return s[i].Key < s[j].Key })
}

// legacyExceptionsFile is the name_exceptions.json layout kept by older tooling.
type legacyExceptionsFile struct {
	AlwaysInclude []string `json:"always_include"`
	AlwaysExclude []string `json:"always_exclude"`
}

// ParseExceptionsFile decodes an {"always_include": [...], "always_exclude": [...]}
// file of full names. A name listed in both lists is excluded.
func ParseExceptionsFile(data []byte) ([]model.NameException, error) {
	var f legacyExceptionsFile
	if err := json5.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode exceptions file: %w", err)
	}

	now := time.Now().UTC()
	byKey := make(map[string]model.NameException)
	add := func(names []string, include bool) {
		for _, name := range names {
			key := model.NameKeyFromFull(name)
			if key == "" {
				continue
			}
			byKey[key] = model.NameException{Key: key, Name: strings.TrimSpace(name), Include: include, UpdatedAt: now}
		}
	}
	add(f.AlwaysInclude, true)
	add(f.AlwaysExclude, false)

	out := make([]model.NameException, 0, len(byKey))
	for _, entry := range byKey {
		out = append(out, entry)
	}
	sortExceptions(out)
	return out, nil
}
