package app

import "ecolearn-challenge-service/internal/domain"

// Resolve returns the winning submission of a two-sided challenge.
// Higher score wins, then strictly lower time taken, then the submission
// that sits first in the ledger.
func Resolve(first, second domain.Submission) domain.Submission {
	if first.Score != second.Score {
		if first.Score > second.Score {
			return first
		}
		return second
	}
	if first.TimeTaken != second.TimeTaken {
		if first.TimeTaken < second.TimeTaken {
			return first
		}
		return second
	}
	return first
}

// recordSubmission replaces the owner's prior submission in its ledger slot, or appends.
func recordSubmission(c *domain.Challenge, sub domain.Submission) {
	for i := range c.Submissions {
		if c.Submissions[i].UserID == sub.UserID {
			c.Submissions[i] = sub
			return
		}
	}
	c.Submissions = append(c.Submissions, sub)
}

func scoresOf(c domain.Challenge) []domain.ParticipantScore {
	scores := make([]domain.ParticipantScore, 0, len(c.Submissions))
	for _, s := range c.Submissions {
		scores = append(scores, domain.ParticipantScore{
			UserID:    s.UserID,
			Score:     s.Score,
			TimeTaken: s.TimeTaken,
		})
	}
	return scores
}
