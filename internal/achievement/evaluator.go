// Package achievement re-derives unlocked achievements from a user's stored
// counters and awards any that newly qualify.
package achievement

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/semillita/semillita/internal/model"
	"github.com/semillita/semillita/internal/store"
)

// Award describes one achievement unlocked during an evaluation pass.
type Award struct {
	AchievementID int64  `json:"achievement_id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	PointsAwarded int    `json:"points_awarded"`
}

// stats is the snapshot a pass evaluates conditions against. It is loaded
// once up front; credits made during the pass are not folded back in until
// the next pass.
type stats struct {
	plant        *model.Plant
	journalCount int
	points       int
}

type Evaluator struct {
	users        *store.UserStore
	plants       *store.PlantStore
	journal      *store.JournalStore
	achievements *store.AchievementStore
	logger       *slog.Logger
	now          func() time.Time
}

func NewEvaluator(
	users *store.UserStore,
	plants *store.PlantStore,
	journal *store.JournalStore,
	achievements *store.AchievementStore,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		users:        users,
		plants:       plants,
		journal:      journal,
		achievements: achievements,
		logger:       logger,
		now:          time.Now,
	}
}

// EvaluateAndAward checks the active catalog against the user's current
// stats, records any newly qualified achievements exactly once, credits
// their point awards, and returns what was unlocked in this call. A missing
// user yields an empty result, not an error. Calling it again with no state
// change awards nothing.
func (e *Evaluator) EvaluateAndAward(userID int64) ([]Award, error) {
	user, err := e.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	catalog, err := e.achievements.ListActive()
	if err != nil {
		return nil, fmt.Errorf("load achievement catalog: %w", err)
	}

	earned, err := e.achievements.ListEarnedIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("load earned achievements: %w", err)
	}

	plant, err := e.plants.GetActive(userID)
	if err != nil {
		return nil, fmt.Errorf("load active plant: %w", err)
	}

	journalCount, err := e.journal.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("count journal entries: %w", err)
	}

	st := stats{plant: plant, journalCount: journalCount, points: user.Points}

	var awards []Award
	for _, a := range catalog {
		if earned[a.ID] {
			continue
		}
		if a.Condition == nil {
			e.logger.Warn("skipping achievement with malformed condition",
				"achievement_id", a.ID, "name", a.Name, "condition", a.ConditionRaw)
			continue
		}
		if !e.satisfied(&a, st) {
			continue
		}

		_, awarded, err := e.achievements.Award(userID, a.ID)
		if err != nil {
			return nil, fmt.Errorf("award achievement %d: %w", a.ID, err)
		}
		if !awarded {
			// A concurrent call got there first; the unlock already exists.
			continue
		}

		if a.PointsRequired > 0 {
			if err := e.users.AddPoints(userID, a.PointsRequired); err != nil {
				return nil, fmt.Errorf("credit achievement points: %w", err)
			}
		}

		e.logger.Info("achievement unlocked",
			"user_id", userID, "achievement_id", a.ID, "name", a.Name, "points", a.PointsRequired)
		awards = append(awards, Award{
			AchievementID: a.ID,
			Name:          a.Name,
			Icon:          a.Icon,
			PointsAwarded: a.PointsRequired,
		})
	}
	return awards, nil
}

func (e *Evaluator) satisfied(a *model.Achievement, st stats) bool {
	switch a.Condition.Type {
	case model.ConditionPlantCreated:
		return st.plant != nil
	case model.ConditionDaysCaring:
		if st.plant == nil {
			return false
		}
		days := int(e.now().Sub(st.plant.PlantedAt).Hours() / 24)
		return days >= a.Condition.Count
	case model.ConditionJournalEntries:
		return st.journalCount >= a.Condition.Count
	case model.ConditionPoints:
		threshold := a.Condition.Threshold
		if threshold == 0 {
			threshold = a.PointsRequired
		}
		return st.points >= threshold
	}
	return false
}
