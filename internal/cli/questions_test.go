package cli

import (
	"testing"

	"ecolearn-challenge-service/internal/domain"
)

func TestSampleQuestionsAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	perDifficulty := map[domain.Difficulty]int{}
	for _, q := range sampleQuestions() {
		if seen[q.ID] {
			t.Fatalf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
		perDifficulty[q.Difficulty]++

		found := false
		for _, o := range q.Options {
			if o == q.Answer {
				found = true
			}
		}
		if !found {
			t.Fatalf("question %s answer %q is not among its options", q.ID, q.Answer)
		}
	}
	for _, d := range domain.Difficulties {
		if perDifficulty[d] < domain.DefaultNumQuestions {
			t.Fatalf("difficulty %s has %d questions, need at least %d for a default challenge", d, perDifficulty[d], domain.DefaultNumQuestions)
		}
	}
}
