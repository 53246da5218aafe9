package model

type Game struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FolderName      string `json:"folder_name"`
	SteamAppID      *int64 `json:"steam_app_id,omitempty"`
	Description     string `json:"description,omitempty"`
	Developer       string `json:"developer,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	ReleaseDate     string `json:"release_date,omitempty"`
	Genres          string `json:"genres,omitempty"`
	CoverPath       string `json:"cover_path,omitempty"`
	IsPublic        bool   `json:"is_public"`
	ScreenshotCount int    `json:"screenshot_count"`
	FirstTakenAt    *int64 `json:"first_taken_at,omitempty"`
	LastTakenAt     *int64 `json:"last_taken_at,omitempty"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}
