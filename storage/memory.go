package storage

import "sort"

// MemoryStorage is an in-process Storage, primarily for tests and for
// single-process deployments that don't need the ledger to survive a
// restart. Grounded on the teacher's storage/memory.go.
type MemoryStorage struct {
	feeds map[string]*FeedMetadata
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{feeds: map[string]*FeedMetadata{}}
}

func (s *MemoryStorage) ListFeeds(filter ListFeedsFilter) ([]*FeedMetadata, error) {
	feeds := []*FeedMetadata{}
	for _, f := range s.feeds {
		if filter.SHA256 != "" && f.SHA256 != filter.SHA256 {
			continue
		}
		if filter.SourcePath != "" && f.SourcePath != filter.SourcePath {
			continue
		}
		feeds = append(feeds, f)
	}
	sort.Slice(feeds, func(i, j int) bool {
		return feeds[i].RetrievedAt.After(feeds[j].RetrievedAt)
	})
	return feeds, nil
}

func (s *MemoryStorage) WriteFeedMetadata(metadata *FeedMetadata) error {
	cp := *metadata
	s.feeds[metadata.SHA256] = &cp
	return nil
}

func (s *MemoryStorage) DeleteFeedMetadata(sha256 string) error {
	delete(s.feeds, sha256)
	return nil
}
