package workers

import (
	"context"
	"log"
	"time"

	"github.com/habitquest/habitquest-engine/internal/core/domain"
	"github.com/habitquest/habitquest-engine/internal/core/progression"
)

type BadgeRepository interface {
	List(ctx context.Context) ([]*domain.Badge, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.UserBadge, error)
}

type CompletionRepository interface {
	ListTimesByUser(ctx context.Context, userID, entityType string) ([]time.Time, error)
	CountByUser(ctx context.Context, userID, entityType string) (int, error)
}

type BadgeGranter interface {
	GrantBadge(ctx context.Context, userID string, badge *domain.Badge) (bool, error)
}

type BadgeJob struct {
	UserID string
}

// BadgeWorker evaluates badge requirements off the request path. Jobs are
// fire-and-forget: a dropped or failed job self-heals on the user's next
// completion, and grants are idempotent at the store.
type BadgeWorker struct {
	badgeRepo      BadgeRepository
	completionRepo CompletionRepository
	granter        BadgeGranter
	now            func() time.Time
	jobs           chan BadgeJob
}

func NewBadgeWorker(badgeRepo BadgeRepository, completionRepo CompletionRepository, granter BadgeGranter, now func() time.Time) *BadgeWorker {
	if now == nil {
		now = time.Now
	}
	return &BadgeWorker{
		badgeRepo:      badgeRepo,
		completionRepo: completionRepo,
		granter:        granter,
		now:            now,
		jobs:           make(chan BadgeJob, 100),
	}
}

func (w *BadgeWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Badge Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Badge Worker shutting down...")
				return
			}
		}
	}()
}

func (w *BadgeWorker) Enqueue(userID string) {
	select {
	case w.jobs <- BadgeJob{UserID: userID}:
	default:
		log.Printf("Badge Worker queue full! Dropping job for user %s", userID)
	}
}

func (w *BadgeWorker) processJob(ctx context.Context, job BadgeJob) {
	badges, err := w.badgeRepo.List(ctx)
	if err != nil {
		log.Printf("Worker Error fetching badges: %v", err)
		return
	}

	owned, err := w.badgeRepo.ListByUser(ctx, job.UserID)
	if err != nil {
		log.Printf("Worker Error fetching badges for user %s: %v", job.UserID, err)
		return
	}
	ownedIDs := make(map[string]bool, len(owned))
	for _, ub := range owned {
		ownedIDs[ub.BadgeID] = true
	}

	total, err := w.completionRepo.CountByUser(ctx, job.UserID, domain.EntityHabit)
	if err != nil {
		log.Printf("Worker Error counting completions for user %s: %v", job.UserID, err)
		return
	}

	times, err := w.completionRepo.ListTimesByUser(ctx, job.UserID, domain.EntityHabit)
	if err != nil {
		log.Printf("Worker Error fetching completions for user %s: %v", job.UserID, err)
		return
	}
	streak := progression.CurrentStreak(times, w.now().UTC())

	for _, badge := range badges {
		if ownedIDs[badge.ID] || !badge.Satisfied(total, streak) {
			continue
		}
		granted, err := w.granter.GrantBadge(ctx, job.UserID, badge)
		if err != nil {
			log.Printf("Worker Failed to grant badge %s to user %s: %v", badge.Name, job.UserID, err)
			continue
		}
		if granted {
			log.Printf("Badge %q granted to user %s (+%d XP)", badge.Name, job.UserID, badge.XPBonus)
		}
	}
}
