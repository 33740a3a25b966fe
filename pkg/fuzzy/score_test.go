package fuzzy

import (
	"testing"
	"time"
)

func TestNormalizer_Score(t *testing.T) {
	normalizer := NewNormalizer()

	source := Candidate{Title: "Blinding Lights", Artist: "The Weeknd", Duration: 200 * time.Second}

	tests := []struct {
		name      string
		candidate Candidate
		min       float64
		max       float64
	}{
		{
			name:      "Same recording with video noise",
			candidate: Candidate{Title: "The Weeknd - Blinding Lights (Official Video)", Artist: "The Weeknd", Duration: 263 * time.Second},
			min:       0.5,
			max:       1.0,
		},
		{
			name:      "Exact match",
			candidate: Candidate{Title: "Blinding Lights", Artist: "The Weeknd", Duration: 201 * time.Second},
			min:       0.99,
			max:       1.0,
		},
		{
			name:      "Unrelated song",
			candidate: Candidate{Title: "Bohemian Rhapsody", Artist: "Queen", Duration: 354 * time.Second},
			min:       0.0,
			max:       0.45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizer.Score(source, tt.candidate)
			if got < tt.min || got > tt.max {
				t.Errorf("Score() = %f, want within [%f, %f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestNormalizer_Score_UnknownDuration(t *testing.T) {
	normalizer := NewNormalizer()

	withDuration := normalizer.Score(
		Candidate{Title: "Song", Artist: "Artist", Duration: 3 * time.Minute},
		Candidate{Title: "Song", Artist: "Artist", Duration: 3 * time.Minute},
	)
	withoutDuration := normalizer.Score(
		Candidate{Title: "Song", Artist: "Artist"},
		Candidate{Title: "Song", Artist: "Artist", Duration: 3 * time.Minute},
	)

	if withoutDuration >= withDuration {
		t.Errorf("unknown duration score %f should be below matched duration score %f", withoutDuration, withDuration)
	}
	if withoutDuration < 0.9 {
		t.Errorf("unknown duration score %f should still be high for identical titles", withoutDuration)
	}
}
