package feed

import (
	"fmt"
	"path"
	"sort"
	"time"
)

// Mode selects which watched entries survive the transformation.
type Mode int

const (
	// ModeCurrentMonth keeps entries watched in the reference month.
	ModeCurrentMonth Mode = 0
	// ModeRecent keeps the most recently watched entries, up to RecentLimit.
	ModeRecent Mode = 1
)

// RecentLimit caps ModeRecent selection.
const RecentLimit = 30

// Valid reports whether m is a known selection mode.
func (m Mode) Valid() bool {
	return m == ModeCurrentMonth || m == ModeRecent
}

// Key identifies an entry against the external metadata provider.
type Key struct {
	ID   int64
	Kind Kind
}

// List holds the transformed, mode-selected sequence of entries.
// Accessors operate only on the selected sequence.
type List struct {
	entries []Entry
}

// Transform parses raw feed bytes and applies the full pipeline: drop
// undated items, deduplicate by title keeping the earliest occurrence,
// drop list-page links, stable-sort by watched date descending, then
// apply the selection mode against the reference time.
func Transform(raw []byte, username string, mode Mode, ref time.Time) (*List, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %d", mode)
	}

	entries, err := parseEntries(raw, username)
	if err != nil {
		return nil, err
	}

	// Undated items are not watch log records.
	dated := entries[:0:0]
	for _, e := range entries {
		if e.HasWatched() {
			dated = append(dated, e)
		}
	}

	// Rewatches show up as duplicate titles; keep only the first occurrence,
	// preserving relative order of the survivors.
	seen := make(map[string]bool, len(dated))
	deduped := dated[:0:0]
	for _, e := range dated {
		if seen[e.Title] {
			continue
		}
		seen[e.Title] = true
		deduped = append(deduped, e)
	}

	kept := deduped[:0:0]
	for _, e := range deduped {
		if !e.ListPage {
			kept = append(kept, e)
		}
	}

	// Most recent first; ties keep feed order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Watched.After(*kept[j].Watched)
	})

	switch mode {
	case ModeCurrentMonth:
		monthly := kept[:0:0]
		for _, e := range kept {
			if e.Watched.Month() == ref.Month() && e.Watched.Year() == ref.Year() {
				monthly = append(monthly, e)
			}
		}
		kept = monthly
	case ModeRecent:
		if len(kept) > RecentLimit {
			kept = kept[:RecentLimit]
		}
	}

	return &List{entries: kept}, nil
}

// Len returns the number of selected entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Empty reports whether no entries survived selection.
func (l *List) Empty() bool {
	return len(l.entries) == 0
}

// Titles returns the selected entry titles in order.
func (l *List) Titles() []string {
	titles := make([]string, len(l.entries))
	for i, e := range l.entries {
		titles[i] = e.Title
	}
	return titles
}

// Ratings returns member ratings in order, -1 where the feed had none.
func (l *List) Ratings() []float64 {
	ratings := make([]float64, len(l.entries))
	for i, e := range l.entries {
		if e.Rating != nil {
			ratings[i] = *e.Rating
		} else {
			ratings[i] = -1
		}
	}
	return ratings
}

// Keys returns the metadata keys in order. The movie id is preferred when
// both were present in the feed; entries with no id yield a zero Key.
func (l *List) Keys() []Key {
	keys := make([]Key, len(l.entries))
	for i, e := range l.entries {
		keys[i] = Key{ID: e.ID, Kind: e.Kind}
	}
	return keys
}

// PosterFiles returns the local poster path for each selected entry,
// derived from the sanitized title rooted at dir.
func (l *List) PosterFiles(dir string) []string {
	files := make([]string, len(l.entries))
	for i, e := range l.entries {
		files[i] = path.Join(dir, SanitizeTitle(e.Title)+".png")
	}
	return files
}

// LastWatched returns the watched date of the final (oldest) selected
// entry, or nil when nothing was selected. Under ModeRecent this is the
// oldest of the kept entries, not the newest overall.
func (l *List) LastWatched() *time.Time {
	if len(l.entries) == 0 {
		return nil
	}
	return l.entries[len(l.entries)-1].Watched
}
