package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
)

// Lister is the one-shot full-collection read the aggregation runs on. This
// is an O(total annotations) scan per refresh; acceptable at the project's
// scale, revisit before the collection grows past a few hundred thousand
// documents.
type Lister interface {
	ListAll(ctx context.Context) ([]domain.Annotation, error)
}

// Entry is one leaderboard row.
type Entry struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
	Rank   int    `json:"rank"`
}

// Board is a computed leaderboard. Entries holds the top N; Ranks holds the
// 1-based rank of every author so RankOf works past the cutoff.
type Board struct {
	Entries          []Entry        `json:"entries"`
	Ranks            map[string]int `json:"ranks"`
	TotalDiscoveries int            `json:"total_discoveries"`
	TotalExplorers   int            `json:"total_explorers"`
	ComputedAt       time.Time      `json:"computed_at"`
}

// RankOf returns the 1-based rank of an author, 0 when the author has no
// discoveries. The anonymous placeholder never gets a rank: it is not a
// meaningful identity to rank a signed-in user against.
func (b *Board) RankOf(author string) int {
	if author == "" || author == domain.DefaultAuthor {
		return 0
	}
	return b.Ranks[author]
}

// Service computes and serves the leaderboard.
type Service struct {
	lister Lister
	cache  *BoardCache
	topN   int
}

func NewService(lister Lister, cache *BoardCache, topN int) *Service {
	return &Service{lister: lister, cache: cache, topN: topN}
}

// Compute aggregates the full annotation collection: per-author counts
// sorted descending, ties broken by first-seen order of the scan (a stable,
// deterministic order; the scan itself is ordered by creation time).
func (s *Service) Compute(ctx context.Context) (*Board, error) {
	all, err := s.lister.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard scan failed: %w", err)
	}

	counts := make(map[string]int)
	var order []string
	for _, a := range all {
		if counts[a.Author] == 0 {
			order = append(order, a.Author)
		}
		counts[a.Author]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	board := &Board{
		Ranks:            make(map[string]int, len(order)),
		TotalDiscoveries: len(all),
		TotalExplorers:   len(order),
		ComputedAt:       time.Now().UTC(),
	}

	for i, author := range order {
		rank := i + 1
		board.Ranks[author] = rank
		if i < s.topN {
			board.Entries = append(board.Entries, Entry{Author: author, Count: counts[author], Rank: rank})
		}
	}

	return board, nil
}

// Refresh recomputes the board and stores it in the cache.
func (s *Service) Refresh(ctx context.Context) (*Board, error) {
	board, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, board); err != nil {
		// A stale cache beats no board; the computation still succeeded.
		log.Printf("[leaderboard] cache write failed: %v", err)
	}

	return board, nil
}

// Get returns the cached board, recomputing on a miss.
func (s *Service) Get(ctx context.Context) (*Board, error) {
	board, err := s.cache.Get(ctx)
	if err == nil {
		return board, nil
	}
	if !errors.Is(err, ErrBoardNotCached) {
		log.Printf("[leaderboard] cache read failed: %v", err)
	}

	return s.Refresh(ctx)
}
