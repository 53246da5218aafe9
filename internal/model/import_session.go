package model

const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
	ImportStatusCancelled = "cancelled"
)

// ImportSession is the durable record of one Steam import run. The
// orchestrator is the single writer; counters and status advance
// incrementally as the pipeline progresses.
type ImportSession struct {
	ID                   string   `json:"id"`
	SteamUserID          string   `json:"steam_user_id"`
	Status               string   `json:"status"`
	TotalGames           int      `json:"total_games"`
	CompletedGames       int      `json:"completed_games"`
	TotalScreenshots     int      `json:"total_screenshots"`
	CompletedScreenshots int      `json:"completed_screenshots"`
	SkippedScreenshots   int      `json:"skipped_screenshots"`
	FailedScreenshots    int      `json:"failed_screenshots"`
	ErrorLog             []string `json:"error_log"`
	StartedAt            *int64   `json:"started_at,omitempty"`
	CompletedAt          *int64   `json:"completed_at,omitempty"`
	Ctime                int64    `json:"ctime"`
}

func (s *ImportSession) Terminal() bool {
	switch s.Status {
	case ImportStatusCompleted, ImportStatusFailed, ImportStatusCancelled:
		return true
	}
	return false
}
