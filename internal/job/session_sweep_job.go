package job

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/internal/model"
	"github.com/gamevault/gamevault/internal/progress"
	"github.com/gamevault/gamevault/internal/repo"
)

// SessionSweepJob fails import sessions stuck in a non-terminal status past
// their max age, e.g. after a crash mid-import, and drops their progress
// state. A swept session's already-imported screenshots stay in the library.
type SessionSweepJob struct {
	sessions *repo.ImportSessionRepo
	registry *progress.Registry
	maxAge   time.Duration
}

func NewSessionSweepJob(sessions *repo.ImportSessionRepo, registry *progress.Registry, maxAge time.Duration) *SessionSweepJob {
	return &SessionSweepJob{sessions: sessions, registry: registry, maxAge: maxAge}
}

func (j *SessionSweepJob) Name() string {
	return "import_session_sweep"
}

// Half-hourly: often enough that abandoned progress queues do not pile up,
// rare enough to stay invisible next to import traffic.
func (j *SessionSweepJob) Spec() string {
	return "*/30 * * * *"
}

func (j *SessionSweepJob) Run(ctx context.Context) error {
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	stale, err := j.sessions.ListStale(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, session := range stale {
		err := j.sessions.Update(ctx, session.ID, map[string]interface{}{
			"status":       model.ImportStatusFailed,
			"completed_at": time.Now().Unix(),
		})
		if err != nil {
			return fmt.Errorf("sweep session %s: %w", session.ID, err)
		}
		_ = j.sessions.AppendError(ctx, session.ID, "session abandoned: swept by maintenance")
		j.registry.Cleanup(session.ID)
		logutil.GetLogger(ctx).Info("stale import session swept",
			zap.String("session_id", session.ID),
			zap.String("previous_status", session.Status),
		)
	}
	return nil
}
