package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ecolearn-challenge-service/internal/domain"
	"ecolearn-challenge-service/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultChallengeReward is the eco-points credited to a challenge winner.
const DefaultChallengeReward = 30

// ChallengeService contains the invite, submission and resolution use cases.
type ChallengeService struct {
	challenges ChallengeRepository
	users      UserDirectory
	points     PointsLedger
	events     EventBus
	reward     int
	now        func() time.Time
	newID      func() string
	log        *zap.SugaredLogger
}

// Option customizes a ChallengeService.
type Option func(*ChallengeService)

// WithReward overrides the winner reward.
func WithReward(amount int) Option {
	return func(s *ChallengeService) {
		if amount > 0 {
			s.reward = amount
		}
	}
}

// WithClock allows deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *ChallengeService) { s.now = now }
}

// WithIDGenerator allows deterministic challenge ids in tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *ChallengeService) { s.newID = newID }
}

// WithLogger sets the service logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *ChallengeService) { s.log = log }
}

func NewChallengeService(challenges ChallengeRepository, users UserDirectory, points PointsLedger, events EventBus, opts ...Option) *ChallengeService {
	s := &ChallengeService{
		challenges: challenges,
		users:      users,
		points:     points,
		events:     events,
		reward:     DefaultChallengeReward,
		now:        time.Now,
		newID:      uuid.NewString,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reward reports the amount credited to each winner.
func (s *ChallengeService) Reward() int {
	return s.reward
}

// CreateInvite proposes a challenge from fromUser to toUser.
func (s *ChallengeService) CreateInvite(ctx context.Context, fromUser, toUser string, numQuestions int) (domain.Challenge, error) {
	if numQuestions < 0 {
		return domain.Challenge{}, fmt.Errorf("%w: numQuestions must be positive", domain.ErrInvalidArgument)
	}
	if numQuestions == 0 {
		numQuestions = domain.DefaultNumQuestions
	}
	if toUser == "" || toUser == fromUser {
		return domain.Challenge{}, domain.ErrInvalidTarget
	}
	exists, err := s.users.Exists(ctx, toUser)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return domain.Challenge{}, domain.ErrInvalidTarget
	}

	now := s.now()
	challenge := domain.Challenge{
		ID:           s.newID(),
		FromUser:     fromUser,
		ToUser:       toUser,
		NumQuestions: numQuestions,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return domain.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}
	s.log.Infow("challenge invite created", "challenge_id", challenge.ID, "from", fromUser, "to", toUser)
	s.publish(ctx, domain.EventInvited, challenge)
	return challenge, nil
}

// AcceptInvite moves a pending invite to accepted on behalf of its recipient.
func (s *ChallengeService) AcceptInvite(ctx context.Context, inviteID, actingUser string) (domain.Challenge, error) {
	return s.respond(ctx, inviteID, actingUser, domain.StatusAccepted, domain.EventAccepted)
}

// DeclineInvite moves a pending invite to declined on behalf of its recipient.
func (s *ChallengeService) DeclineInvite(ctx context.Context, inviteID, actingUser string) (domain.Challenge, error) {
	return s.respond(ctx, inviteID, actingUser, domain.StatusDeclined, domain.EventDeclined)
}

func (s *ChallengeService) respond(ctx context.Context, inviteID, actingUser string, to domain.ChallengeStatus, event domain.EventType) (domain.Challenge, error) {
	updated, err := s.challenges.Update(ctx, inviteID, func(c *domain.Challenge) error {
		if c.ToUser != actingUser {
			return domain.ErrForbidden
		}
		if c.Status != domain.StatusPending {
			return domain.ErrAlreadyResolved
		}
		c.Status = to
		c.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	s.log.Infow("challenge invite answered", "challenge_id", inviteID, "status", to)
	s.publish(ctx, event, updated)
	return updated, nil
}

// ListPendingInvites returns invites awaiting userID, most recent first.
func (s *ChallengeService) ListPendingInvites(ctx context.Context, userID string) ([]domain.Challenge, error) {
	invites, err := s.challenges.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	sort.SliceStable(invites, func(i, j int) bool {
		if !invites[i].CreatedAt.Equal(invites[j].CreatedAt) {
			return invites[i].CreatedAt.After(invites[j].CreatedAt)
		}
		return invites[i].ID > invites[j].ID
	})
	return invites, nil
}

// MarkStarted records that userID has begun the challenge. Repeated calls are no-ops.
func (s *ChallengeService) MarkStarted(ctx context.Context, challengeID, userID string) (domain.Challenge, error) {
	added := false
	updated, err := s.challenges.Update(ctx, challengeID, func(c *domain.Challenge) error {
		added = false
		if !c.IsParticipant(userID) {
			return domain.ErrNotAParticipant
		}
		if c.HasStarted(userID) {
			return nil
		}
		if c.Status.Terminal() {
			return domain.ErrAlreadyResolved
		}
		c.StartedUsers = append(c.StartedUsers, userID)
		c.UpdatedAt = s.now()
		added = true
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	if added {
		s.publish(ctx, domain.EventStarted, updated)
	}
	return updated, nil
}

// GetChallenge returns a challenge visible to one of its participants.
func (s *ChallengeService) GetChallenge(ctx context.Context, challengeID, actingUser string) (domain.Challenge, error) {
	challenge, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return domain.Challenge{}, err
	}
	if !challenge.IsParticipant(actingUser) {
		return domain.Challenge{}, domain.ErrNotAParticipant
	}
	return challenge, nil
}

// Submit records userID's answers and resolves the challenge once both sides have submitted.
// When the resolution commits but the reward credit fails, the resolved outcome is returned
// together with an error wrapping domain.ErrRewardPending.
func (s *ChallengeService) Submit(ctx context.Context, challengeID, userID string, answers []domain.Answer, timeTaken time.Duration) (domain.SubmitOutcome, error) {
	outcome := domain.SubmitOutcome{ChallengeID: challengeID}
	if timeTaken < 0 {
		return outcome, fmt.Errorf("%w: timeTaken must not be negative", domain.ErrInvalidArgument)
	}
	if timeTaken > domain.MaxTimeTakenSeconds*time.Second {
		return outcome, fmt.Errorf("%w: timeTaken exceeds %d seconds", domain.ErrInvalidArgument, domain.MaxTimeTakenSeconds)
	}

	resolvedNow := false
	updated, err := s.challenges.Update(ctx, challengeID, func(c *domain.Challenge) error {
		resolvedNow = false
		if !c.IsParticipant(userID) {
			return domain.ErrNotAParticipant
		}
		if c.Status.Terminal() {
			return domain.ErrAlreadyResolved
		}
		if len(answers) > c.NumQuestions {
			return fmt.Errorf("%w: %d answers for %d questions", domain.ErrInvalidArgument, len(answers), c.NumQuestions)
		}

		now := s.now()
		recordSubmission(c, domain.Submission{
			UserID:      userID,
			Answers:     append([]domain.Answer(nil), answers...),
			Score:       domain.ScoreAnswers(answers),
			TimeTaken:   timeTaken,
			SubmittedAt: now,
		})
		c.UpdatedAt = now
		if len(c.Submissions) < 2 {
			return nil
		}

		winner := Resolve(c.Submissions[0], c.Submissions[1])
		c.Winner = winner.UserID
		c.Status = domain.StatusCompleted
		c.CompletedAt = &now
		resolvedNow = true
		return nil
	})
	if err != nil {
		return outcome, err
	}

	if !resolvedNow {
		s.publish(ctx, domain.EventSubmitted, updated)
		return outcome, nil
	}

	outcome.Resolved = true
	outcome.Winner = updated.Winner
	outcome.Scores = scoresOf(updated)
	outcome.Reward = s.reward
	s.log.Infow("challenge resolved", "challenge_id", challengeID, "winner", updated.Winner)
	s.publish(ctx, domain.EventResolved, updated)

	balance, err := s.credit(ctx, updated)
	if err != nil {
		outcome.RewardPending = true
		return outcome, err
	}
	outcome.Balance = balance
	return outcome, nil
}

// SettleReward retries the winner credit of a completed challenge. The ledger is keyed by
// challenge id, so repeated calls never credit twice.
func (s *ChallengeService) SettleReward(ctx context.Context, challengeID, actingUser string) (int, error) {
	challenge, err := s.GetChallenge(ctx, challengeID, actingUser)
	if err != nil {
		return 0, err
	}
	if challenge.Status != domain.StatusCompleted {
		return 0, domain.ErrNotResolved
	}
	return s.credit(ctx, challenge)
}

func (s *ChallengeService) credit(ctx context.Context, challenge domain.Challenge) (int, error) {
	balance, err := s.points.Credit(ctx, RewardKey(challenge.ID), challenge.Winner, s.reward)
	if err != nil {
		metrics.RewardCredits.WithLabelValues("failed").Inc()
		s.log.Warnw("challenge reward pending", "challenge_id", challenge.ID, "winner", challenge.Winner, "error", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrRewardPending, err)
	}
	metrics.RewardCredits.WithLabelValues("credited").Inc()

	if !challenge.RewardCredited {
		_, err := s.challenges.Update(ctx, challenge.ID, func(c *domain.Challenge) error {
			c.RewardCredited = true
			return nil
		})
		if err != nil {
			s.log.Warnw("mark reward credited failed", "challenge_id", challenge.ID, "error", err)
		}
	}
	return balance, nil
}

// RewardKey is the idempotency key used when crediting a challenge winner.
func RewardKey(challengeID string) string {
	return "challenge:" + challengeID
}

func (s *ChallengeService) publish(ctx context.Context, typ domain.EventType, challenge domain.Challenge) {
	metrics.ChallengeEvents.WithLabelValues(string(typ)).Inc()
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.ChallengeEvent{
		Type:        typ,
		ChallengeID: challenge.ID,
		Challenge:   challenge,
		At:          s.now(),
	})
}
