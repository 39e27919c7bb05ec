package domain

import "time"

// Video is a persisted generation result shown in galleries.
type Video struct {
	ID        int64
	JobID     string
	Prompt    string
	VideoURL  string
	Provider  string
	CreatedAt time.Time
}
