package domain

import "time"

// Like registra que un usuario marco un video. (UserID, VideoID) es unico.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VideoID   string    `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}
