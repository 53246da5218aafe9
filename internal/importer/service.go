package importer

import (
	"context"
	"sync"
	"time"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/progress"
	"github.com/gamevault/gamevault/internal/repo"
	"github.com/gamevault/gamevault/internal/service"
	"github.com/gamevault/gamevault/internal/steam"
)

// StartRequest describes one import run.
type StartRequest struct {
	SteamUserID      string
	SteamLoginSecure string
	SessionID        string

	// GameFilter restricts the run to these app ids; empty means all
	// discovered games.
	GameFilter []int64

	// FetchDetails enables the per-item detail fetch on the scrape path,
	// which recovers captions and capture times at one extra request per
	// screenshot.
	FetchDetails bool
}

// SessionStore is the durable session record the pipeline writes through.
// Writes to it are load-bearing: a failed write means the recorded state no
// longer matches reality, so the run aborts rather than continue lying.
type SessionStore interface {
	Create(ctx context.Context, id, steamUserID string) error
	Get(ctx context.Context, id string) (*model.ImportSession, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	AppendError(ctx context.Context, id string, message string) error
}

// Service orchestrates Steam imports: one goroutine per session drives the
// pipeline while handlers observe it through the session row and the
// progress registry.
type Service struct {
	sessions    SessionStore
	shots       *repo.ScreenshotRepo
	games       *service.GameService
	screenshots *service.ScreenshotService
	metadata    *service.MetadataService
	settings    *service.SettingsService
	registry    *progress.Registry
	store       filestore.Store
	factory     steam.Factory
	rateLimit   time.Duration
	quality     int

	mu       sync.Mutex
	activeID string
}

type Deps struct {
	Sessions    SessionStore
	Shots       *repo.ScreenshotRepo
	Games       *service.GameService
	Screenshots *service.ScreenshotService
	Metadata    *service.MetadataService
	Settings    *service.SettingsService
	Registry    *progress.Registry
	Store       filestore.Store
	Factory     steam.Factory
	RateLimit   time.Duration
	Quality     int
}

func New(deps Deps) *Service {
	factory := deps.Factory
	if factory == nil {
		factory = steam.New
	}
	return &Service{
		sessions:    deps.Sessions,
		shots:       deps.Shots,
		games:       deps.Games,
		screenshots: deps.Screenshots,
		metadata:    deps.Metadata,
		settings:    deps.Settings,
		registry:    deps.Registry,
		store:       deps.Store,
		factory:     factory,
		rateLimit:   deps.RateLimit,
		quality:     deps.Quality,
	}
}

// Start creates the session and launches the pipeline. Only one import may
// run at a time; the run detaches from the caller's context so closing the
// HTTP request does not abort it.
func (s *Service) Start(ctx context.Context, req StartRequest) (*model.ImportSession, error) {
	if req.SteamUserID == "" {
		return nil, appErr.ErrInvalid
	}
	s.mu.Lock()
	if s.activeID != "" {
		s.mu.Unlock()
		return nil, appErr.ErrConflict
	}
	sessionID := newSessionID()
	s.activeID = sessionID
	s.mu.Unlock()

	if err := s.sessions.Create(ctx, sessionID, req.SteamUserID); err != nil {
		s.release(sessionID)
		return nil, err
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.release(sessionID)
		return nil, err
	}

	s.registry.GetOrCreateQueue(sessionID)
	go s.run(context.Background(), sessionID, req)
	return session, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (*model.ImportSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Cancel requests a graceful stop. The pipeline notices between items and
// finishes with cancelled status; already-imported screenshots stay.
func (s *Service) Cancel(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Terminal() {
		return appErr.ErrImportNotRunning
	}
	s.registry.RequestCancel(sessionID)
	return nil
}

// Subscribe returns the session's progress queue, which exists for any
// session id so a subscriber arriving before the producer still attaches to
// the right queue.
func (s *Service) Subscribe(sessionID string) *progress.Queue {
	return s.registry.GetOrCreateQueue(sessionID)
}

// Release drops the session's progress state once a consumer has drained
// the stream to its done event.
func (s *Service) Release(sessionID string) {
	s.registry.Cleanup(sessionID)
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	if s.activeID == sessionID {
		s.activeID = ""
	}
	s.mu.Unlock()
}
