package model

const (
	SourceUpload      = "upload"
	SourceSteamImport = "steam_import"
)

type Screenshot struct {
	ID          int64  `json:"id"`
	GameID      int64  `json:"game_id"`
	Filename    string `json:"filename"`
	FilePath    string `json:"file_path"`
	Source      string `json:"source"`
	SteamID     string `json:"steam_id,omitempty"`
	Caption     string `json:"caption,omitempty"`
	SHA256      string `json:"sha256,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Format      string `json:"format,omitempty"`
	FileSize    int64  `json:"file_size,omitempty"`
	TakenAt     *int64 `json:"taken_at,omitempty"`
	UploadedAt  int64  `json:"uploaded_at"`
	Favorite    bool   `json:"favorite"`
	ThumbSmall  string `json:"thumb_small,omitempty"`
	ThumbMedium string `json:"thumb_medium,omitempty"`
}

type Annotation struct {
	ID           int64  `json:"id"`
	ScreenshotID int64  `json:"screenshot_id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
