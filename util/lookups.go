package util

import (
	"sort"
	"time"
)

type (
	LookupEntry struct {
		Hash     string    `json:"hash"`     // content digest of the file
		Modified time.Time `json:"modified"` // modification time of the file
		Name     string    `json:"name"`     // path of the file as found by the walker
		Size     int64     `json:"size"`     // size of the file in bytes
	}
	// DigestTable collects lookup entries and groups them by content digest.
	// It is not safe for concurrent use; feed it from a single collector.
	DigestTable struct {
		entries []LookupEntry
		sorted  bool
	}
)

func (t DigestTable) Iterate(yield func(LookupEntry) bool) {
	for _, entry := range t.entries {
		if !yield(entry) {
			return
		}
	}
}

func (t *DigestTable) Add(le LookupEntry) {
	t.sorted = false
	t.entries = append(t.entries, le)
}

// Sort orders entries by name. It is a no-op until the table changes again.
func (t *DigestTable) Sort() {
	if t.sorted {
		return
	}
	sort.Sort(t)
	t.sorted = true
}

func (t DigestTable) Len() int {
	return len(t.entries)
}

func (t DigestTable) Swap(i, j int) {
	t.entries[i], t.entries[j] = t.entries[j], t.entries[i]
}

func (t DigestTable) Less(i, j int) bool {
	return t.entries[i].Name < t.entries[j].Name
}

// Groups returns the entries keyed by digest. Entries inside a group keep
// table order, so a sorted table yields sorted groups.
func (t DigestTable) Groups() map[string][]LookupEntry {
	groups := make(map[string][]LookupEntry)
	for e := range t.Iterate {
		groups[e.Hash] = append(groups[e.Hash], e)
	}
	return groups
}

// GetUniqueCount returns the number of content-unique files in the table.
func (t DigestTable) GetUniqueCount() int {
	hashes := make(map[string]bool)
	for e := range t.Iterate {
		hashes[e.Hash] = true
	}
	return len(hashes)
}

// DuplicateGroups returns only the groups holding more than one file,
// ordered by the name of their first member.
func (t DigestTable) DuplicateGroups() [][]LookupEntry {
	var dups [][]LookupEntry
	for _, g := range t.Groups() {
		if len(g) > 1 {
			dups = append(dups, g)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i][0].Name < dups[j][0].Name })
	return dups
}

// GetTotalSize returns the summed size of every entry.
func (t DigestTable) GetTotalSize() int64 {
	var total int64
	for e := range t.Iterate {
		total += e.Size
	}
	return total
}

// GetDuplicateSize returns the bytes that deduplication would not have to
// process: every copy after the first of each digest.
func (t DigestTable) GetDuplicateSize() int64 {
	var total int64
	for _, g := range t.DuplicateGroups() {
		for _, e := range g[1:] {
			total += e.Size
		}
	}
	return total
}
