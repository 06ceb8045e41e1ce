// Package cascade keeps dependent option sets of a multi-level filter
// hierarchy (subject -> course -> chapter -> section and similar) in sync.
//
// The option set of level i is a function of the selections at levels < i.
// A change at one level recomputes every deeper level top-down: a level is
// refetched only when its serialized parent-selection key differs from the
// one it was last computed for, and its selection is pruned to the new
// option set before the next level is considered.
package cascade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FetchFunc returns the option set of a level given the selections of every
// level above it (parents[0] is the top level).
type FetchFunc func(ctx context.Context, parents [][]string) ([]Option, error)

type Level struct {
	Name  string
	Fetch FetchFunc
}

// LevelState is the observable state of one level.
type LevelState struct {
	Name      string   `json:"name"`
	Options   []Option `json:"options"`
	Selection []string `json:"selection"`
}

type levelState struct {
	options   []Option
	selection []string
	lastKey   string
	fetched   bool
}

// Resolver is safe for concurrent use.
type Resolver struct {
	mu     sync.Mutex
	levels []Level
	state  []levelState
}

func New(levels ...Level) *Resolver {
	return &Resolver{
		levels: levels,
		state:  make([]levelState, len(levels)),
	}
}

// Refresh computes every level from the top, fetching only levels whose
// parent key changed.
func (r *Resolver) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recompute(ctx, 0, len(r.levels))
}

// Select replaces the selection of one level and cascades the change down.
func (r *Resolver) Select(ctx context.Context, level int, values []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if level < 0 || level >= len(r.levels) {
		return fmt.Errorf("cascade: level %d out of range", level)
	}

	st := &r.state[level]
	if !st.fetched {
		if err := r.recompute(ctx, 0, level+1); err != nil {
			return err
		}
	}
	st.selection = prune(normalize(values), st.options)
	return r.recompute(ctx, level+1, len(r.levels))
}

// Snapshot returns a copy of every level's options and selection.
func (r *Resolver) Snapshot() []LevelState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LevelState, len(r.levels))
	for i, lvl := range r.levels {
		st := r.state[i]
		out[i] = LevelState{
			Name:      lvl.Name,
			Options:   append([]Option(nil), st.options...),
			Selection: append([]string{}, st.selection...),
		}
	}
	return out
}

// recompute brings levels [from, to) up to date with their parents
func (r *Resolver) recompute(ctx context.Context, from, to int) error {
	for i := from; i < to; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		parents := r.parentSelections(i)
		key := SelectionKey(parents)
		st := &r.state[i]
		if st.fetched && st.lastKey == key {
			continue
		}

		options, err := r.levels[i].Fetch(ctx, parents)
		if err != nil {
			return fmt.Errorf("cascade: fetch %s options: %w", r.levels[i].Name, err)
		}

		st.options = options
		st.lastKey = key
		st.fetched = true
		st.selection = prune(st.selection, options)
	}
	return nil
}

func (r *Resolver) parentSelections(level int) [][]string {
	parents := make([][]string, level)
	for i := 0; i < level; i++ {
		parents[i] = append([]string{}, r.state[i].selection...)
	}
	return parents
}

// Resolve is the stateless form: it seeds a resolver with the given
// selections (one slice per level, missing trailing levels are empty) and
// computes every level once.
func Resolve(ctx context.Context, levels []Level, selections [][]string) ([]LevelState, error) {
	r := New(levels...)
	for i := range r.state {
		if i < len(selections) {
			r.state[i].selection = normalize(selections[i])
		}
	}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	return r.Snapshot(), nil
}

// SelectionKey serializes parent selections independent of value order.
func SelectionKey(parents [][]string) string {
	parts := make([]string, len(parents))
	for i, sel := range parents {
		parts[i] = strings.Join(normalize(sel), ",")
	}
	return strings.Join(parts, "|")
}

func normalize(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func prune(selection []string, options []Option) []string {
	valid := make(map[string]struct{}, len(options))
	for _, o := range options {
		valid[o.Value] = struct{}{}
	}
	out := make([]string, 0, len(selection))
	for _, v := range selection {
		if _, ok := valid[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
