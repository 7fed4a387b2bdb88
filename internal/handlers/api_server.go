// internal/handlers/api_server.go
package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tcg2i/tcg-service/internal/auth"
	"github.com/tcg2i/tcg-service/internal/booster"
	"github.com/tcg2i/tcg-service/internal/cache"
	"github.com/tcg2i/tcg-service/internal/config"
	"github.com/tcg2i/tcg-service/internal/entitlement"
	"github.com/tcg2i/tcg-service/internal/models"
)

// Store is the persistence surface the handlers need. *database.Store
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)

	GetCollection(ctx context.Context, userID uuid.UUID) (*models.Collection, error)
	UpdateCollection(ctx context.Context, userID uuid.UUID, mutate func(*models.Collection) error) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	SetBoosterCount(ctx context.Context, userID uuid.UUID, count int) (*models.Collection, error)
}

// CardSource serves card reference data; in production it is the Redis-backed
// CardCache over the Postgres store.
type CardSource interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error)
}

// AuditPublisher receives pack-open records. May be nil when Redis is
// disabled; publishing is best-effort either way.
type AuditPublisher interface {
	PublishPackOpen(ctx context.Context, record cache.PackOpenRecord) error
}

// Server holds every dependency the HTTP layer needs, constructed once at
// startup.
type Server struct {
	Log          *logrus.Logger
	Auth         *auth.Service
	Store        Store
	Cards        CardSource
	Entitlements *entitlement.Service
	Audit        AuditPublisher
	Client       config.ClientConfig

	// Bands is the booster probability table.
	Bands booster.BandTable
	// NewRand supplies a random source per request; tests inject seeded ones.
	NewRand func() *rand.Rand
}

// New builds a Server with default band table and a time-seeded random
// source.
func New(log *logrus.Logger, authSvc *auth.Service, store Store, cards CardSource, ent *entitlement.Service, audit AuditPublisher, client config.ClientConfig) *Server {
	return &Server{
		Log:          log,
		Auth:         authSvc,
		Store:        store,
		Cards:        cards,
		Entitlements: ent,
		Audit:        audit,
		Client:       client,
		Bands:        booster.DefaultBands,
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Routes wires every endpoint onto a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// user lifecycle
	mux.HandleFunc("/user/create", s.CreateUserHandler)
	mux.HandleFunc("/user/login", s.LoginHandler)
	mux.HandleFunc("/session", s.SessionHandler)
	mux.HandleFunc("/user/ws", s.UserStreamHandler)

	// public config subset
	mux.HandleFunc("/api/client-config", s.ClientConfigHandler)

	// card queries
	mux.HandleFunc("/api/open-pack", s.OpenPackLegacyHandler)
	mux.HandleFunc("/api/rarity-booster", s.RarityBoosterHandler)
	mux.HandleFunc("/api/memory-cards", s.MemoryCardsHandler)

	// game actions
	mux.HandleFunc("/api/pack/open", s.OpenWeightedPackHandler)
	mux.HandleFunc("/api/booster/availability", s.BoosterAvailabilityHandler)
	mux.HandleFunc("/api/booster/collect", s.CollectBoosterHandler)
	mux.HandleFunc("/api/memory/result", s.MemoryResultHandler)

	// collection & leaderboard
	mux.HandleFunc("/api/collection", s.CollectionHandler)
	mux.HandleFunc("/api/leaderboard", s.LeaderboardHandler)

	// admin
	mux.HandleFunc("/api/user/boosters", s.SetBoostersHandler)

	return mux
}
