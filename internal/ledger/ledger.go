// Package ledger keeps the durable set of already-seen canonical
// identifiers, partitioned by source kind and source URL. It is the single
// piece of state that makes discovery idempotent across runs and restarts.
package ledger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"govwatcher/internal/domain"
	"govwatcher/internal/logging"
)

// yearLookback bounds the retention sweep's year-substring scan. Only the
// current year and the five before it are probed; identifiers carrying no
// detectable year are never removed.
const yearLookback = 5

// Ledger is safe for concurrent use. Membership is monotonic: identifiers
// are only added, never removed outside SweepOlderThan.
type Ledger struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	seen map[domain.SourceKind]map[string][]string
}

// emptySets builds the seen map with an empty partition for every kind.
func emptySets() map[domain.SourceKind]map[string][]string {
	sets := map[domain.SourceKind]map[string][]string{}
	for _, kind := range domain.Kinds() {
		sets[kind] = map[string][]string{}
	}
	return sets
}

// Open loads the ledger at path. A missing file starts empty; an unreadable
// or corrupt file also starts empty (fail-open) but is logged, because the
// alternative is a watcher that can never run again.
func Open(path string, logger *slog.Logger) *Ledger {
	l := &Ledger{
		path:   path,
		logger: logging.Discard(logger),
		now:    time.Now,
		seen:   emptySets(),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Error("ledger load failed, starting empty", "path", path, "error", err)
		}
		return l
	}

	loaded := map[domain.SourceKind]map[string][]string{}
	if err := json.Unmarshal(raw, &loaded); err != nil {
		l.logger.Error("ledger parse failed, starting empty", "path", path, "error", err)
		return l
	}

	// Prior files may predate a kind; missing partitions stay empty.
	for _, kind := range domain.Kinds() {
		if sets, ok := loaded[kind]; ok && sets != nil {
			l.seen[kind] = sets
		}
	}
	return l
}

// IsNew reports whether the identifier has never been seen for this
// (kind, source URL) pair.
func (l *Ledger) IsNew(kind domain.SourceKind, sourceURL, identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !slices.Contains(l.setFor(kind, sourceURL), identifier)
}

// MarkSeen records the identifier and persists the whole ledger. It is
// idempotent: a second call for the same identifier is a no-op returning
// false. Persistence failure is logged and does not roll back the in-memory
// addition; the worst case is a re-report on the next run.
func (l *Ledger) MarkSeen(kind domain.SourceKind, sourceURL, identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.setFor(kind, sourceURL)
	if slices.Contains(set, identifier) {
		return false
	}
	l.seen[kind][sourceURL] = append(set, identifier)
	l.save()
	return true
}

// SweepOlderThan removes identifiers whose embedded 4-digit year predates
// the cutoff, and returns how many were dropped. The year detection is a
// substring heuristic, deliberately approximate: an identifier with no
// detectable year is never touched, so the sweep can only under-delete.
func (l *Ledger) SweepOlderThan(days int) int {
	if days <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoffYear := now.AddDate(0, 0, -days).Year()

	removed := 0
	for kind, sets := range l.seen {
		for sourceURL, ids := range sets {
			kept := ids[:0:0]
			for _, id := range ids {
				if identifierYearBefore(id, now.Year(), cutoffYear) {
					removed++
					continue
				}
				kept = append(kept, id)
			}
			l.seen[kind][sourceURL] = kept
		}
	}

	if removed > 0 {
		l.save()
	}
	l.logger.Info("ledger sweep complete", "removed", removed, "cutoff_year", cutoffYear)
	return removed
}

// identifierYearBefore scans the recent calendar years for a substring
// match and reports whether the first matching year is older than cutoff.
func identifierYearBefore(identifier string, currentYear, cutoffYear int) bool {
	for year := currentYear - yearLookback; year <= currentYear; year++ {
		if !containsYear(identifier, year) {
			continue
		}
		return year < cutoffYear
	}
	return false
}

func containsYear(identifier string, year int) bool {
	needle := strconv.Itoa(year)
	for i := 0; i+len(needle) <= len(identifier); i++ {
		if identifier[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// setFor returns the identifier set, creating the partition on first
// reference. Caller holds the mutex.
func (l *Ledger) setFor(kind domain.SourceKind, sourceURL string) []string {
	if l.seen[kind] == nil {
		l.seen[kind] = map[string][]string{}
	}
	if _, ok := l.seen[kind][sourceURL]; !ok {
		l.seen[kind][sourceURL] = []string{}
	}
	return l.seen[kind][sourceURL]
}

// save writes the whole document. Every addition pays a full rewrite; the
// ledger stays small and the simplicity beats incremental persistence here.
// Caller holds the mutex.
func (l *Ledger) save() {
	raw, err := json.MarshalIndent(l.seen, "", "  ")
	if err != nil {
		l.logger.Error("ledger marshal failed", "error", err)
		return
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			l.logger.Error("ledger save failed", "path", l.path, "error", err)
			return
		}
	}
	if err := os.WriteFile(l.path, raw, 0o644); err != nil {
		l.logger.Error("ledger save failed", "path", l.path, "error", err)
	}
}
