package core

import (
	"time"

	"tunebridge/pkg/fuzzy"
)

// FirstResult trusts the provider's own ordering and takes the top candidate.
type FirstResult struct{}

func (FirstResult) Pick(_ Track, candidates []Track) (Track, bool) {
	if len(candidates) == 0 {
		return Track{}, false
	}
	return candidates[0], true
}

// SimilarityRanker scores every candidate against the source by title, artist and
// duration and picks the best one scoring at least MinScore. Ties keep provider order.
type SimilarityRanker struct {
	MinScore   float64
	normalizer *fuzzy.Normalizer
}

func NewSimilarityRanker(minScore float64) *SimilarityRanker {
	return &SimilarityRanker{MinScore: minScore, normalizer: fuzzy.NewNormalizer()}
}

func (r *SimilarityRanker) Pick(source Track, candidates []Track) (Track, bool) {
	src := toCandidate(source)

	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := r.normalizer.Score(src, toCandidate(c))
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 || bestScore < r.MinScore {
		return Track{}, false
	}
	return candidates[best], true
}

func toCandidate(t Track) fuzzy.Candidate {
	c := fuzzy.Candidate{Title: t.Title, Artist: t.Artist}
	if d, ok := t.DurationSeconds(); ok {
		c.Duration = time.Duration(d) * time.Second
	}
	return c
}

// NewRanker returns the ranker named in cfg.
func NewRanker(cfg ResolveConfig) Ranker {
	if cfg.Ranker == RankerSimilarity {
		return NewSimilarityRanker(cfg.MinScore)
	}
	return FirstResult{}
}
