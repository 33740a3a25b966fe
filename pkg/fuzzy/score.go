package fuzzy

import "time"

const (
	titleWeight    = 0.6
	combinedWeight = 0.3
	durationWeight = 0.1

	// unknownDurationCredit is granted when either side has no duration.
	unknownDurationCredit = 0.5
)

// Candidate is the part of a track that takes part in scoring.
type Candidate struct {
	Title    string
	Artist   string
	Duration time.Duration // Zero when unknown.
}

// Score rates how likely candidate is the same recording as source, in [0, 1].
func (n *Normalizer) Score(source, candidate Candidate) float64 {
	sourceTitle := n.NormalizeTitle(source.Title)
	candidateTitle := n.NormalizeTitle(candidate.Title)

	titleSimilarity := n.CalculateSimilarity(sourceTitle, candidateTitle)
	combinedSimilarity := n.CalculateSimilarity(
		n.NormalizeArtist(source.Artist)+" "+sourceTitle,
		n.NormalizeArtist(candidate.Artist)+" "+candidateTitle,
	)

	durationScore := unknownDurationCredit
	if source.Duration > 0 && candidate.Duration > 0 {
		durationScore = n.DurationTolerance(source.Duration, candidate.Duration)
	}

	return titleWeight*titleSimilarity + combinedWeight*combinedSimilarity + durationWeight*durationScore
}
