// Package deletion removes commands from the history by id or by shell-style
// pattern.
package deletion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// Store is the part of the history store deletion needs.
type Store interface {
	List(ctx context.Context, filter modes.FilterMode, hctx history.Context, opts history.QueryOptions) ([]*history.Record, error)
	Delete(ctx context.Context, id string) error
}

// Service handles all command deletion operations
type Service struct {
	store  Store
	logger *logger.Logger
}

// Request represents a deletion operation request
type Request struct {
	// IDs deletes these records. Ignored when Pattern is set.
	IDs []string
	// Pattern deletes every record whose whole command matches; * matches any
	// run of characters and ? a single one.
	Pattern string
	// Filter and Context restrict a pattern deletion to one scope.
	Filter  modes.FilterMode
	Context history.Context
	DryRun  bool
}

// Result contains the results of a deletion operation
type Result struct {
	DeletedCount   int
	MatchedRecords []*history.Record
	Duration       time.Duration
}

// NewService creates a new deletion service
func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: logger.GetLogger().WithComponent("deletion"),
	}
}

// Execute runs a deletion request. A dry run only reports the matches.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{}

	if req.Pattern != "" {
		if err := ValidatePattern(req.Pattern); err != nil {
			return nil, err
		}
		matches, err := s.matchPattern(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to get records for deletion: %w", err)
		}
		result.MatchedRecords = matches
	} else {
		for _, id := range req.IDs {
			result.MatchedRecords = append(result.MatchedRecords, &history.Record{ID: id})
		}
	}

	if req.DryRun {
		result.Duration = time.Since(start)
		s.logger.Info().Int("matched_count", len(result.MatchedRecords)).Msg("Dry-run completed")
		return result, nil
	}

	for _, r := range result.MatchedRecords {
		if err := s.store.Delete(ctx, r.ID); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("deletion failed after %d records: %w", result.DeletedCount, err)
		}
		result.DeletedCount++
	}
	result.Duration = time.Since(start)

	s.logger.Info().
		Int("deleted_count", result.DeletedCount).
		Dur("duration", result.Duration).
		Msg("Deletion operation completed")
	return result, nil
}

func (s *Service) matchPattern(ctx context.Context, req Request) ([]*history.Record, error) {
	re, err := PatternToRegexp(req.Pattern)
	if err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx, req.Filter, req.Context, history.QueryOptions{})
	if err != nil {
		return nil, err
	}

	var matches []*history.Record
	for _, r := range records {
		if re.MatchString(r.Command) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// PatternToRegexp converts a shell-style pattern to an anchored regexp.
func PatternToRegexp(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	escaped = strings.ReplaceAll(escaped, `\?`, ".")
	return regexp.Compile("(?s)^" + escaped + "$")
}

// ValidatePattern rejects patterns broad enough to wipe the history by
// accident.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("pattern cannot be empty")
	}

	literal := strings.NewReplacer("*", "", "?", "").Replace(pattern)
	if literal == "" {
		return fmt.Errorf("pattern '%s' is too broad and could delete all commands", pattern)
	}
	if len(literal) < 2 {
		return fmt.Errorf("pattern '%s' is too vague, please be more specific", pattern)
	}
	return nil
}
