package core

import "sync"

// Entry pairs a registered code with the format it was registered under.
type Entry struct {
	Format Format
	Code   Code
}

// Registry holds the imported codes of each format in insertion order.
// Duplicates are allowed. Each format list has its own lock.
type Registry struct {
	lists map[Format]*codeList
}

type codeList struct {
	mu    sync.RWMutex
	codes []Code
}

// NewRegistry returns an empty registry with one list per supported format.
func NewRegistry() *Registry {
	r := &Registry{lists: make(map[Format]*codeList, len(formats))}
	for _, f := range formats {
		r.lists[f] = &codeList{}
	}
	return r
}

func (r *Registry) list(format Format) *codeList {
	l, ok := r.lists[format]
	if !ok {
		panic("registry: unknown format " + string(format))
	}
	return l
}

// Append adds codes to the end of the format's list.
func (r *Registry) Append(format Format, codes ...Code) {
	if len(codes) == 0 {
		return
	}
	l := r.list(format)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.codes = append(l.codes, codes...)
}

// Snapshot returns a copy of the format's list.
func (r *Registry) Snapshot(format Format) []Code {
	l := r.list(format)
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Code, len(l.codes))
	copy(out, l.codes)
	return out
}

// Concat returns the entries of every given format, one list after the other.
func (r *Registry) Concat(formats ...Format) []Entry {
	var out []Entry
	for _, f := range formats {
		for _, c := range r.Snapshot(f) {
			out = append(out, Entry{Format: f, Code: c})
		}
	}
	return out
}

// Clear empties the format's list and returns how many codes it held.
func (r *Registry) Clear(format Format) int {
	l := r.list(format)
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.codes)
	l.codes = l.codes[:0]
	return n
}

// Len returns the number of codes registered for format.
func (r *Registry) Len(format Format) int {
	l := r.list(format)
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.codes)
}

// Sizes returns the length of every list, keyed by format.
func (r *Registry) Sizes() map[Format]int {
	out := make(map[Format]int, len(formats))
	for _, f := range formats {
		out[f] = r.Len(f)
	}
	return out
}
