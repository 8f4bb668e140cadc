package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultNumQuestions is used when an invite does not specify a question count.
const DefaultNumQuestions = 5

// MaxTimeTakenSeconds bounds a submission's reported time.
const MaxTimeTakenSeconds = 24 * 60 * 60

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	StatusPending   ChallengeStatus = "pending"
	StatusAccepted  ChallengeStatus = "accepted"
	StatusDeclined  ChallengeStatus = "declined"
	StatusCompleted ChallengeStatus = "completed"
)

// Terminal reports whether no further transitions are allowed.
func (s ChallengeStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusDeclined
}

// Difficulty is the question difficulty band.
type Difficulty string

const (
	// DifficultyAny disables difficulty filtering when selecting questions.
	DifficultyAny    Difficulty = ""
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"

	// DefaultDifficulty applies to stored questions that carry no difficulty.
	DefaultDifficulty = DifficultyEasy
)

// Difficulties lists the concrete bands in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty validates client input. The empty string maps to DifficultyAny.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DifficultyAny, nil
	case "easy":
		return DifficultyEasy, nil
	case "medium":
		return DifficultyMedium, nil
	case "hard":
		return DifficultyHard, nil
	}
	return DifficultyAny, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, raw)
}

// NormalizeDifficulty maps stored values onto a concrete band, defaulting to DefaultDifficulty.
func NormalizeDifficulty(raw string) Difficulty {
	d, err := ParseDifficulty(raw)
	if err != nil || d == DifficultyAny {
		return DefaultDifficulty
	}
	return d
}

// Question is a multiple choice quiz item.
type Question struct {
	ID         string     `json:"id"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Prompt     string     `json:"question"`
	Options    []string   `json:"options"`
	Answer     string     `json:"answer"`
}

// Answer is one graded answer inside a submission.
type Answer struct {
	QuestionID string `json:"questionId"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Submission is a participant's answer set for a challenge.
type Submission struct {
	UserID      string        `json:"userId"`
	Answers     []Answer      `json:"answers"`
	Score       int           `json:"score"`
	TimeTaken   time.Duration `json:"timeTaken"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// ScoreAnswers counts correct answers.
func ScoreAnswers(answers []Answer) int {
	score := 0
	for _, a := range answers {
		if a.IsCorrect {
			score++
		}
	}
	return score
}

// Challenge is a 1v1 quiz match between two users.
type Challenge struct {
	ID             string          `json:"id"`
	FromUser       string          `json:"fromUser"`
	ToUser         string          `json:"toUser"`
	NumQuestions   int             `json:"numQuestions"`
	Status         ChallengeStatus `json:"status"`
	StartedUsers   []string        `json:"startedUsers"`
	Submissions    []Submission    `json:"submissions"`
	Winner         string          `json:"winner,omitempty"`
	RewardCredited bool            `json:"rewardCredited"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// IsParticipant reports whether userID is either side of the challenge.
func (c *Challenge) IsParticipant(userID string) bool {
	return userID != "" && (userID == c.FromUser || userID == c.ToUser)
}

// HasStarted reports whether userID has begun the challenge.
func (c *Challenge) HasStarted(userID string) bool {
	for _, id := range c.StartedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores never share slices with callers.
func (c Challenge) Clone() Challenge {
	out := c
	out.StartedUsers = append([]string(nil), c.StartedUsers...)
	if c.Submissions != nil {
		out.Submissions = make([]Submission, len(c.Submissions))
		for i, s := range c.Submissions {
			s.Answers = append([]Answer(nil), s.Answers...)
			out.Submissions[i] = s
		}
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// ParticipantScore is the per-side summary returned after resolution.
type ParticipantScore struct {
	UserID    string        `json:"userId"`
	Score     int           `json:"score"`
	TimeTaken time.Duration `json:"timeTaken"`
}

// SubmitOutcome summarizes a submission.
type SubmitOutcome struct {
	ChallengeID   string             `json:"challengeId"`
	Resolved      bool               `json:"resolved"`
	Winner        string             `json:"winner,omitempty"`
	Scores        []ParticipantScore `json:"scores,omitempty"`
	Reward        int                `json:"reward,omitempty"`
	RewardPending bool               `json:"rewardPending,omitempty"`
	// Balance is the winner's balance after crediting; zero when the credit is pending.
	Balance int `json:"balance,omitempty"`
}

// LeaderboardEntry is a row of the eco-points leaderboard.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// EventType names a challenge lifecycle event.
type EventType string

const (
	EventInvited   EventType = "invited"
	EventAccepted  EventType = "accepted"
	EventDeclined  EventType = "declined"
	EventStarted   EventType = "started"
	EventSubmitted EventType = "submitted"
	EventResolved  EventType = "resolved"
)

// ChallengeEvent is pushed to subscribers of a challenge.
type ChallengeEvent struct {
	Type        EventType `json:"type"`
	ChallengeID string    `json:"challengeId"`
	Challenge   Challenge `json:"challenge"`
	At          time.Time `json:"at"`
}
