// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package generator fills the catalog with synthetic records whose titles are unique.

A [Generator] run takes one snapshot of the persisted titles, synthesizes
candidates until the requested count is reached or the attempt budget is
spent, and flushes accepted records to the store in fixed-size batches.

Runs are serialized by a [Locker]. Stores that enforce title uniqueness
themselves may still skip records at write time; the result always reports
the records that were actually persisted.
*/
package generator

import "github.com/taibuivan/mimanga/internal/core/manga"

// TitleSet tracks normalized titles. It is not safe for concurrent use.
type TitleSet struct {
	seen map[string]struct{}
}

// NewTitleSet returns an empty set sized for capacity titles.
func NewTitleSet(capacity int) *TitleSet {
	return &TitleSet{seen: make(map[string]struct{}, max(capacity, 0))}
}

// Add inserts the normalized form of title and reports whether it was new.
func (s *TitleSet) Add(title string) bool {
	key := manga.NormalizeTitle(title)
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains reports whether the normalized form of title is in the set.
func (s *TitleSet) Contains(title string) bool {
	_, exists := s.seen[manga.NormalizeTitle(title)]
	return exists
}

func (s *TitleSet) Len() int {
	return len(s.seen)
}
