package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/semillita/semillita/internal/achievement"
	"github.com/semillita/semillita/internal/consent"
	"github.com/semillita/semillita/internal/email"
	"github.com/semillita/semillita/internal/handler"
	"github.com/semillita/semillita/internal/media"
	"github.com/semillita/semillita/internal/middleware"
	"github.com/semillita/semillita/internal/push"
	"github.com/semillita/semillita/internal/store"
	ws "github.com/semillita/semillita/internal/websocket"
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	ConsentSecret []byte
	Push          push.Config
	Media         media.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	userH         *handler.UserHandler
	consentH      *handler.ConsentHandler
	plantH        *handler.PlantHandler
	journalH      *handler.JournalHandler
	emotionH      *handler.EmotionHandler
	achievementH  *handler.AchievementHandler
	rewardH       *handler.RewardHandler
	rosterH       *handler.RosterHandler
	pushH         *handler.PushHandler
	mediaH        *handler.MediaHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	pushStore     *store.PushStore
	consentGate   *consent.Gate
	rateLimiter   *middleware.RateLimiter
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	plantStore := store.NewPlantStore(db)
	journalStore := store.NewJournalStore(db)
	emotionStore := store.NewEmotionStore(db)
	achievementStore := store.NewAchievementStore(db)
	rewardStore := store.NewRewardStore(db)
	pushStore := store.NewPushStore(db)

	tokens := consent.NewTokens(cfg.ConsentSecret)
	gate := consent.NewGate(userStore, logger.With("component", "consent"))
	evaluator := achievement.NewEvaluator(userStore, plantStore, journalStore, achievementStore, logger.With("component", "achievements"))

	pushSvc := push.NewService(cfg.Push)
	pushSched := push.NewScheduler(pushSvc, pushStore, userStore, journalStore, logger.With("component", "push"))
	mediaStore := media.NewStore(cfg.Media)

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, tokens, emailClient, logger.With("component", "auth")),
		userH:         handler.NewUserHandler(userStore, logger.With("component", "user")),
		consentH:      handler.NewConsentHandler(userStore, tokens, emailClient, logger.With("component", "consent")),
		plantH:        handler.NewPlantHandler(plantStore, evaluator, hub, logger.With("component", "plant")),
		journalH:      handler.NewJournalHandler(journalStore, emotionStore, plantStore, userStore, evaluator, hub, logger.With("component", "journal")),
		emotionH:      handler.NewEmotionHandler(emotionStore, logger.With("component", "emotion")),
		achievementH:  handler.NewAchievementHandler(achievementStore, logger.With("component", "achievement")),
		rewardH:       handler.NewRewardHandler(rewardStore, hub, logger.With("component", "reward")),
		rosterH:       handler.NewRosterHandler(userStore, plantStore, journalStore, achievementStore, logger.With("component", "roster")),
		pushH:         handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler")),
		mediaH:        handler.NewMediaHandler(mediaStore, logger.With("component", "media")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		pushStore:     pushStore,
		consentGate:   gate,
		rateLimiter:   middleware.NewRateLimiter(),
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushScheduler returns the daily reminder scheduler.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("POST /api/users", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /consent/verify", s.consentH.Verify)
	outerMux.HandleFunc("POST /api/consent/resend", s.rateLimitedHandler(s.consentH.Resend))
	outerMux.HandleFunc("GET /api/emotions", s.emotionH.List)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes: session first, then the consent gate on writes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMW := middleware.RequireAuth(s.sessionStore, s.userStore)
	gateMW := middleware.ConsentGate(s.consentGate)
	outerMux.Handle("/", authMW(gateMW(protectedMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Users
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("POST /api/me/pin", s.userH.SetPIN)
	mux.HandleFunc("GET /api/users/{id}/consent", s.consentH.Status)

	// Plants
	mux.HandleFunc("POST /api/plants", s.plantH.Create)
	mux.HandleFunc("GET /api/plants/active", s.plantH.GetActive)
	mux.HandleFunc("PUT /api/plants/{id}", s.plantH.Update)

	// Journal
	mux.HandleFunc("POST /api/journal", s.journalH.Create)
	mux.HandleFunc("GET /api/journal", s.journalH.List)
	mux.HandleFunc("DELETE /api/journal/{id}", s.journalH.Delete)

	// Achievements
	mux.HandleFunc("GET /api/achievements", s.achievementH.List)
	mux.HandleFunc("GET /api/achievements/earned", s.achievementH.ListEarned)

	// Rewards
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards/{id}/purchase", s.rewardH.Purchase)
	mux.HandleFunc("GET /api/rewards/purchased", s.rewardH.ListPurchased)

	// Facilitator dashboard
	mux.Handle("GET /api/roster", middleware.RequireFacilitator(http.HandlerFunc(s.rosterH.ListChildren)))
	mux.Handle("GET /api/roster/{id}", middleware.RequireFacilitator(http.HandlerFunc(s.rosterH.ChildDetail)))

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("POST /api/push/test", s.pushH.Test)

	// Media
	mux.HandleFunc("POST /api/media/{kind}", s.mediaH.Upload)
	mux.HandleFunc("GET /api/media/{key...}", s.mediaH.Get)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
