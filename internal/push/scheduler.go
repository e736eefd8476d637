package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/semillita/semillita/internal/model"
	"github.com/semillita/semillita/internal/store"
)

// reminderHour is the UTC hour at which the daily journal reminder fires.
const reminderHour = 18

// Scheduler sends the daily "write in your journal" reminder to children who
// have not written an entry today.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	users    *store.UserStore
	journal  *store.JournalStore
	logger   *slog.Logger
	interval time.Duration
	lastRun  time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(svc *Service, pushStore *store.PushStore, userStore *store.UserStore, journalStore *store.JournalStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		users:    userStore,
		journal:  journalStore,
		logger:   logger,
		interval: time.Minute,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	if now.Hour() != reminderHour {
		return
	}

	s.mu.Lock()
	alreadyRan := s.lastRun.Year() == now.Year() && s.lastRun.YearDay() == now.YearDay()
	if !alreadyRan {
		s.lastRun = now
	}
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	s.sendJournalReminders()
}

func (s *Scheduler) sendJournalReminders() {
	children, err := s.users.ListByRole(model.RoleChild)
	if err != nil {
		s.logger.Error("journal reminders: list children", "error", err)
		return
	}

	for _, child := range children {
		n, err := s.journal.CountTodayByUser(child.ID)
		if err != nil {
			s.logger.Error("journal reminders: count today", "user_id", child.ID, "error", err)
			continue
		}
		if n > 0 {
			continue
		}

		subs, err := s.push.ListByUser(child.ID)
		if err != nil {
			s.logger.Error("journal reminders: list subscriptions", "user_id", child.ID, "error", err)
			continue
		}

		payload := Payload{
			Title: "Semillita",
			Body:  "Tu planta te espera. ¿Cómo te sientes hoy?",
			URL:   "/journal",
			Tag:   "journal-reminder",
		}
		for i := range subs {
			if err := s.service.Send(&subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					if delErr := s.push.Delete(subs[i].ID); delErr != nil {
						s.logger.Error("journal reminders: delete expired subscription", "error", delErr)
					}
					continue
				}
				s.logger.Warn("journal reminders: send", "user_id", child.ID, "error", err)
			}
		}
	}
}
