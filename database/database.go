package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"
	"github.com/reliefworks/floodscan/database/db"
	"github.com/reliefworks/floodscan/model"
)

type Database struct {
	connString string
	pool       *pgxpool.Pool
}

func NewDatabase(connString string) *Database {
	return &Database{
		connString: connString,
	}
}

func (d *Database) Connect(ctx context.Context) error {
	var err error
	d.pool, err = pgxpool.New(ctx, d.connString)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) Disconnect() {
	d.pool.Close()
}

// AddAssessment persists one completed assessment and returns the row id.
// The full structured result is stored as JSON alongside the columns the
// records office queries on.
func (d *Database) AddAssessment(ctx context.Context, videoPath string, result model.AssessmentResult) (string, error) {
	report, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	id := cuid.New()
	_, err = d.pool.Exec(ctx, `
	INSERT INTO assessment (id, property_id, video_path, safety_score, is_clear, report, created) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		result.PropertyID,
		videoPath,
		result.SafetyScore,
		result.IsClear,
		report,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *Database) GetAssessment(ctx context.Context, id string) (*model.Record, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		property_id,
		video_path,
		safety_score,
		is_clear,
		report,
		created
	FROM assessment
	WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}

	raw, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[db.Assessment])
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return model.RecordFromAssessmentRow(raw)
}

func (d *Database) ListRecentAssessments(ctx context.Context, limit int) ([]model.Record, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		property_id,
		video_path,
		safety_score,
		is_clear,
		report,
		created
	FROM assessment
	ORDER BY created DESC
	LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	raws, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Assessment])
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for _, raw := range raws {
		record, err := model.RecordFromAssessmentRow(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}
