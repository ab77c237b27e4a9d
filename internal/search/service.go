package search

import (
	"time"

	"github.com/volumedex/volumedex/internal/store"
)

// MetricsRecorder receives search telemetry; nil by default.
type MetricsRecorder interface {
	SearchCompleted(duration time.Duration)
}

// Repository is the subset of internal/store.SearchRepository the service
// needs.
type Repository interface {
	Search(matchExpr string, limit int, withDuplicateCount bool) ([]store.SearchHit, error)
}

// ConnectivityChecker reports whether a volume is presently mounted
// (internal/volumes.Watcher.IsConnected).
type ConnectivityChecker interface {
	IsConnected(volumeID string) bool
}

// Service answers search queries (spec.md §4.8).
type Service struct {
	repo         Repository
	connectivity ConnectivityChecker
	config       Config
	metrics      MetricsRecorder
}

// New creates a search service over repo, joining connectivity from
// connectivity.
func New(repo Repository, connectivity ConnectivityChecker, config Config) *Service {
	return &Service{repo: repo, connectivity: connectivity, config: config}
}

// SetMetrics attaches a metrics recorder; optional, defaults to a no-op.
func (s *Service) SetMetrics(m MetricsRecorder) { s.metrics = m }

// Search sanitizes query, issues it against the store, and annotates each
// hit with its volume's current connectivity. A limit <= 0 falls back to
// config.DefaultLimit. An empty or all-grammar query returns an empty,
// non-nil result slice without touching the store.
func (s *Service) Search(query string, limit int) ([]Result, error) {
	start := time.Now()
	if s.metrics != nil {
		defer func() { s.metrics.SearchCompleted(time.Since(start)) }()
	}

	matchExpr, ok := sanitize(query)
	if !ok {
		return []Result{}, nil
	}

	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	hits, err := s.repo.Search(matchExpr, limit, s.config.WithDuplicateCount)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, Result{
			FileID:            h.FileID,
			Name:              h.Name,
			RelativePath:      h.RelativePath,
			Size:              h.Size,
			VolumeID:          h.VolumeID,
			VolumeDisplayName: h.VolumeDisplayName,
			IsConnected:       s.connectivity.IsConnected(h.VolumeID),
			DuplicateCount:    h.DuplicateCount,
		})
	}
	return out, nil
}
