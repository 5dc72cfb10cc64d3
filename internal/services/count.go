package services

import (
	"context"
	"fmt"

	"flamewars/internal/models"
	"flamewars/internal/utils"
)

// Count returns the number of live comments per page. Invalid urls are
// skipped and duplicates collapse onto their normalized form.
func (s *CommentService) Count(ctx context.Context, urls []string) ([]models.URLCount, error) {
	if len(urls) > s.opts.MaxCountURLs {
		return nil, validationError(fmt.Sprintf("at most %d urls per request", s.opts.MaxCountURLs))
	}

	seen := make(map[string]bool, len(urls))
	counts := make([]models.URLCount, 0, len(urls))
	for _, raw := range urls {
		pageURL, err := utils.NormalizeURL(raw)
		if err != nil || seen[pageURL] {
			continue
		}
		seen[pageURL] = true

		records, err := s.loadRecords(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		n := 0
		for _, r := range records {
			if !r.Tombstoned() {
				n++
			}
		}
		counts = append(counts, models.URLCount{URL: pageURL, Count: n})
	}
	return counts, nil
}
