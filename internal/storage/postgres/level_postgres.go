package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

type LevelPostgres struct {
	db *pgxpool.Pool
}

func NewLevelPostgres(db *pgxpool.Pool) *LevelPostgres {
	return &LevelPostgres{db: db}
}

const levelColumns = `id, name, description, level_number, welcome_video_url, image_object_key, price,
	initial_exam_question, final_exam_question, created_at, updated_at`

func scanLevel(row pgx.Row) (*models.Level, error) {
	var l models.Level
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.LevelNumber, &l.WelcomeVideoURL, &l.ImageObjectKey, &l.Price,
		&l.InitialExamQuestion, &l.FinalExamQuestion, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LevelPostgres) CreateLevel(ctx context.Context, level models.Level) (*models.Level, error) {
	now := time.Now().UTC()
	if level.ID == uuid.Nil {
		level.ID = uuid.New()
	}
	level.CreatedAt = now
	level.UpdatedAt = now

	query := `
		INSERT INTO levels (
			id, name, description, level_number, welcome_video_url, image_object_key, price,
			initial_exam_question, final_exam_question, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		level.ID, level.Name, level.Description, level.LevelNumber, level.WelcomeVideoURL, level.ImageObjectKey,
		level.Price, level.InitialExamQuestion, level.FinalExamQuestion, level.CreatedAt, level.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("failed to insert level", err)
	}
	return &level, nil
}

func (r *LevelPostgres) LevelByID(ctx context.Context, id uuid.UUID) (*models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = $1`

	level, err := scanLevel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLevelNotFound
		}
		return nil, storageErr("failed to get level", err)
	}
	return level, nil
}

func (r *LevelPostgres) ListLevels(ctx context.Context, f models.LevelFilter) ([]models.Level, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.LevelNumber != nil {
		add("level_number = $%d", *f.LevelNumber)
	}
	if f.Name != "" {
		add("name ILIKE '%%' || $%d::text || '%%'", f.Name)
	}

	query := `SELECT ` + levelColumns + ` FROM levels`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY level_number, id`

	return r.queryLevels(ctx, query, args...)
}

func (r *LevelPostgres) LevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Level, error) {
	query := `SELECT ` + levelColumns + ` FROM levels WHERE id = ANY($1) ORDER BY level_number, id`
	return r.queryLevels(ctx, query, ids)
}

// LevelCounts returns video and enrollment counts for the given levels.
func (r *LevelPostgres) LevelCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.LevelCounts, error) {
	query := `
		SELECT l.id,
		       (SELECT COUNT(*) FROM videos v WHERE v.level_id = l.id),
		       (SELECT COUNT(*) FROM enrollments e WHERE e.level_id = l.id)
		  FROM levels l
		 WHERE l.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, storageErr("failed to count level videos and users", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]models.LevelCounts, len(ids))
	for rows.Next() {
		var (
			id uuid.UUID
			c  models.LevelCounts
		)
		if err := rows.Scan(&id, &c.VideosCount, &c.UserCount); err != nil {
			return nil, storageErr("failed to scan level counts", err)
		}
		counts[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate level counts", err)
	}
	return counts, nil
}

func (r *LevelPostgres) queryLevels(ctx context.Context, query string, args ...any) ([]models.Level, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("failed to query levels", err)
	}
	defer rows.Close()

	levels := []models.Level{}
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, storageErr("failed to scan level", err)
		}
		levels = append(levels, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate levels", err)
	}
	return levels, nil
}

func (r *LevelPostgres) UpdateLevel(ctx context.Context, id uuid.UUID, upd models.LevelUpdate) (*models.Level, error) {
	query := `
		UPDATE levels
		   SET name                  = COALESCE($2, name),
		       description           = COALESCE($3, description),
		       level_number          = COALESCE($4, level_number),
		       welcome_video_url     = COALESCE($5, welcome_video_url),
		       price                 = COALESCE($6, price),
		       initial_exam_question = COALESCE($7, initial_exam_question),
		       final_exam_question   = COALESCE($8, final_exam_question),
		       updated_at            = $9
		 WHERE id = $1
		RETURNING ` + levelColumns

	level, err := scanLevel(r.db.QueryRow(ctx, query, id,
		upd.Name, upd.Description, upd.LevelNumber, upd.WelcomeVideoURL, upd.Price,
		upd.InitialExamQuestion, upd.FinalExamQuestion, time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLevelNotFound
		}
		return nil, storageErr("failed to update level", err)
	}
	return level, nil
}

// SetImage stores the new object key and returns the previous one.
func (r *LevelPostgres) SetImage(ctx context.Context, id uuid.UUID, objectKey string) (string, error) {
	query := `
		UPDATE levels l
		   SET image_object_key = $2, updated_at = $3
		  FROM (SELECT image_object_key FROM levels WHERE id = $1 FOR UPDATE) old
		 WHERE l.id = $1
		RETURNING old.image_object_key
	`
	var previous string
	if err := r.db.QueryRow(ctx, query, id, objectKey, time.Now().UTC()).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", app_errors.ErrLevelNotFound
		}
		return "", storageErr("failed to set level image", err)
	}
	return previous, nil
}

// DeleteLevel removes the level and returns its image key for blob cleanup.
// Videos, questions, enrollments and progress rows cascade.
func (r *LevelPostgres) DeleteLevel(ctx context.Context, id uuid.UUID) (string, error) {
	var imageKey string
	err := r.db.QueryRow(ctx, `DELETE FROM levels WHERE id = $1 RETURNING image_object_key`, id).Scan(&imageKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", app_errors.ErrLevelNotFound
		}
		return "", storageErr("failed to delete level", err)
	}
	return imageKey, nil
}

func (r *LevelPostgres) WelcomeVideo(ctx context.Context) (*models.WelcomeVideo, error) {
	var wv models.WelcomeVideo
	err := r.db.QueryRow(ctx, `SELECT video_url, updated_at FROM welcome_video`).Scan(&wv.VideoURL, &wv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrWelcomeVideoNotFound
		}
		return nil, storageErr("failed to get welcome video", err)
	}
	return &wv, nil
}

func (r *LevelPostgres) SetWelcomeVideo(ctx context.Context, url string) (*models.WelcomeVideo, error) {
	wv := models.WelcomeVideo{VideoURL: url, UpdatedAt: time.Now().UTC()}
	query := `
		INSERT INTO welcome_video (id, video_url, updated_at) VALUES (TRUE, $1, $2)
		ON CONFLICT (id) DO UPDATE SET video_url = EXCLUDED.video_url, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, wv.VideoURL, wv.UpdatedAt); err != nil {
		return nil, storageErr("failed to set welcome video", err)
	}
	return &wv, nil
}
