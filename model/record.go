package model

import (
	"encoding/json"
	"time"

	"github.com/reliefworks/floodscan/database/db"
)

// Record is a persisted assessment plus its storage metadata.
type Record struct {
	ID        string
	VideoPath string
	Result    AssessmentResult
	Created   time.Time
}

func RecordFromAssessmentRow(row db.Assessment) (*Record, error) {
	var result AssessmentResult
	if err := json.Unmarshal(row.Report, &result); err != nil {
		return nil, err
	}
	return &Record{
		ID:        row.ID,
		VideoPath: row.VideoPath,
		Result:    result,
		Created:   row.Created,
	}, nil
}
