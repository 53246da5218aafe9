package model

// TimelineDay is one calendar day with captured screenshots, keyed by a
// UTC "YYYY-MM-DD" date string.
type TimelineDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
