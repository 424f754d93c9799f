package db

import "time"

type Assessment struct {
	ID          string    `db:"id"`
	PropertyID  string    `db:"property_id"`
	VideoPath   string    `db:"video_path"`
	SafetyScore int       `db:"safety_score"`
	IsClear     bool      `db:"is_clear"`
	Report      []byte    `db:"report"`
	Created     time.Time `db:"created"`
}
