// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"time"

	"github.com/taibuivan/mimanga/pkg/pointer"
)

// Summary aggregates the catalog for the generator status endpoint.
type Summary struct {
	TotalMangas     int        `json:"total_mangas"`
	DuplicateGroups int        `json:"duplicate_groups"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
	Genres          int        `json:"genres"`
	Publishers      int        `json:"publishers"`
	InPublication   int        `json:"in_publication"`
	Finished        int        `json:"finished"`
}

// Summarize computes a [Summary] from one catalog snapshot.
//
// LastUpdated is the latest UpdatedAt, falling back to CreatedAt for records
// never updated. It is nil for an empty catalog.
func Summarize(mangas []*Manga) Summary {
	summary := Summary{
		TotalMangas:     len(mangas),
		DuplicateGroups: len(GroupDuplicates(mangas)),
	}

	genres := make(map[string]struct{})
	publishers := make(map[string]struct{})
	var latest time.Time

	for _, m := range mangas {
		genres[m.Genre] = struct{}{}
		publishers[m.Publisher] = struct{}{}

		if m.InPublication {
			summary.InPublication++
		}
		if m.Status == StatusFinished {
			summary.Finished++
		}

		if touched := pointer.Fallback(m.UpdatedAt, m.CreatedAt); touched.After(latest) {
			latest = touched
		}
	}

	summary.Genres = len(genres)
	summary.Publishers = len(publishers)
	if !latest.IsZero() {
		summary.LastUpdated = &latest
	}
	return summary
}
