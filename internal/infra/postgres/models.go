package postgres

import (
	"time"

	"ecolearn-challenge-service/internal/domain"
	"github.com/uptrace/bun"
)

type challengeModel struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID             string     `bun:"id,pk"`
	FromUser       string     `bun:"from_user,notnull"`
	ToUser         string     `bun:"to_user,notnull"`
	NumQuestions   int        `bun:"num_questions,notnull"`
	Status         string     `bun:"status,notnull"`
	StartedUsers   []string   `bun:"started_users,type:jsonb,notnull"`
	Winner         string     `bun:"winner,nullzero"`
	RewardCredited bool       `bun:"reward_credited,notnull"`
	CreatedAt      time.Time  `bun:"created_at,notnull"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull"`
	CompletedAt    *time.Time `bun:"completed_at"`

	Submissions []submissionModel `bun:"rel:has-many,join:id=challenge_id"`
}

type submissionModel struct {
	bun.BaseModel `bun:"table:challenge_submissions,alias:s"`

	ChallengeID string          `bun:"challenge_id,pk"`
	UserID      string          `bun:"user_id,pk"`
	Seq         int             `bun:"seq,notnull"`
	Answers     []domain.Answer `bun:"answers,type:jsonb,notnull"`
	Score       int             `bun:"score,notnull"`
	TimeTakenNs int64           `bun:"time_taken_ns,notnull"`
	SubmittedAt time.Time       `bun:"submitted_at,notnull"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID         string   `bun:"id,pk"`
	Category   string   `bun:"category,notnull"`
	Difficulty string   `bun:"difficulty,notnull"`
	Question   string   `bun:"question,notnull"`
	Options    []string `bun:"options,type:jsonb,notnull"`
	Answer     string   `bun:"answer,notnull"`
}

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID string `bun:"id,pk"`
}

func toChallengeModel(c domain.Challenge) challengeModel {
	started := c.StartedUsers
	if started == nil {
		started = []string{}
	}
	m := challengeModel{
		ID:             c.ID,
		FromUser:       c.FromUser,
		ToUser:         c.ToUser,
		NumQuestions:   c.NumQuestions,
		Status:         string(c.Status),
		StartedUsers:   started,
		Winner:         c.Winner,
		RewardCredited: c.RewardCredited,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		CompletedAt:    c.CompletedAt,
	}
	for i, s := range c.Submissions {
		answers := s.Answers
		if answers == nil {
			answers = []domain.Answer{}
		}
		m.Submissions = append(m.Submissions, submissionModel{
			ChallengeID: c.ID,
			UserID:      s.UserID,
			Seq:         i,
			Answers:     answers,
			Score:       s.Score,
			TimeTakenNs: int64(s.TimeTaken),
			SubmittedAt: s.SubmittedAt,
		})
	}
	return m
}

func (m challengeModel) toDomain() domain.Challenge {
	c := domain.Challenge{
		ID:             m.ID,
		FromUser:       m.FromUser,
		ToUser:         m.ToUser,
		NumQuestions:   m.NumQuestions,
		Status:         domain.ChallengeStatus(m.Status),
		StartedUsers:   m.StartedUsers,
		Winner:         m.Winner,
		RewardCredited: m.RewardCredited,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		CompletedAt:    m.CompletedAt,
	}
	for _, s := range m.Submissions {
		c.Submissions = append(c.Submissions, domain.Submission{
			UserID:      s.UserID,
			Answers:     s.Answers,
			Score:       s.Score,
			TimeTaken:   time.Duration(s.TimeTakenNs),
			SubmittedAt: s.SubmittedAt,
		})
	}
	return c
}
