package catalog

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/policy"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

const searchLimit = 20

type LevelRepo interface {
	CreateLevel(ctx context.Context, level models.Level) (*models.Level, error)
	LevelByID(ctx context.Context, id uuid.UUID) (*models.Level, error)
	ListLevels(ctx context.Context, f models.LevelFilter) ([]models.Level, error)
	LevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Level, error)
	LevelCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.LevelCounts, error)
	UpdateLevel(ctx context.Context, id uuid.UUID, upd models.LevelUpdate) (*models.Level, error)
	SetImage(ctx context.Context, id uuid.UUID, objectKey string) (string, error)
	DeleteLevel(ctx context.Context, id uuid.UUID) (string, error)
	WelcomeVideo(ctx context.Context) (*models.WelcomeVideo, error)
	SetWelcomeVideo(ctx context.Context, url string) (*models.WelcomeVideo, error)
}

type VideoRepo interface {
	CreateVideo(ctx context.Context, video models.Video) (*models.Video, error)
	VideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	VideosByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Video, error)
	AllVideos(ctx context.Context) ([]models.Video, error)
	UpdateVideo(ctx context.Context, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	SwapVideos(ctx context.Context, firstID, secondID uuid.UUID) ([]models.Video, error)
	CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error)
	QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	QuestionsByVideo(ctx context.Context, videoID uuid.UUID) ([]models.Question, error)
	QuestionsByLevel(ctx context.Context, levelID uuid.UUID) ([]models.Question, error)
	AllQuestions(ctx context.Context) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
}

// ProgressReader exposes the viewer's enrollments so level pages can show
// which videos are open.
type ProgressReader interface {
	Enrollment(ctx context.Context, userID, levelID uuid.UUID) (*models.Enrollment, error)
	EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
	Progress(ctx context.Context, enrollment models.Enrollment) ([]models.Video, []models.VideoProgress, error)
}

type SearchIndex interface {
	Index(ctx context.Context, level models.Level) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type ImageStorage interface {
	Upload(ctx context.Context, ownerID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

type CatalogService struct {
	log      logger.Log
	levels   LevelRepo
	videos   VideoRepo
	progress ProgressReader
	search   SearchIndex
	images   ImageStorage
}

func NewCatalogService(l logger.Log, levels LevelRepo, videos VideoRepo, progress ProgressReader, search SearchIndex, images ImageStorage) *CatalogService {
	return &CatalogService{
		log:      l,
		levels:   levels,
		videos:   videos,
		progress: progress,
		search:   search,
		images:   images,
	}
}

func validateLevel(l models.Level) error {
	if strings.TrimSpace(l.Name) == "" {
		return app_errors.Invalid("name is required")
	}
	if l.LevelNumber < 1 {
		return app_errors.Invalid("level_number must be positive")
	}
	if l.Price < 0 {
		return app_errors.Invalid("price must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateLevel(ctx context.Context, actor models.Actor, level models.Level) (*models.Level, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}

	created, err := s.levels.CreateLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	s.indexLevel(ctx, *created)
	return created, nil
}

func (s *CatalogService) UpdateLevel(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.LevelUpdate) (*models.Level, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.levels.LevelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(current)
	if err := validateLevel(*current); err != nil {
		return nil, err
	}

	updated, err := s.levels.UpdateLevel(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.indexLevel(ctx, *updated)
	return s.withImage(ctx, updated), nil
}

func (s *CatalogService) DeleteLevel(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	imageKey, err := s.levels.DeleteLevel(ctx, id)
	if err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.Delete(ctx, id); err != nil {
			s.log.ErrorErr("failed to remove level from search index", err, "level_id", id)
		}
	}
	if imageKey != "" {
		s.removeImage(ctx, imageKey)
	}
	s.log.Info("level deleted", "level_id", id)
	return nil
}

// UploadLevelImage replaces the level image and removes the previous object.
func (s *CatalogService) UploadLevelImage(ctx context.Context, actor models.Actor, id uuid.UUID, file models.Upload) (*models.Level, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := file.ValidateImage(); err != nil {
		return nil, err
	}
	if _, err := s.levels.LevelByID(ctx, id); err != nil {
		return nil, err
	}

	key, err := s.images.Upload(ctx, id, file.Filename, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, app_errors.Storage(err)
	}
	previous, err := s.levels.SetImage(ctx, id, key)
	if err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	if previous != "" {
		s.removeImage(ctx, previous)
	}

	level, err := s.levels.LevelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withImage(ctx, level), nil
}

// ListLevels returns the filtered levels with their video counts and the
// actor's enrollment state. Admins also get the number of enrolled users.
func (s *CatalogService) ListLevels(ctx context.Context, actor models.Actor, f models.LevelFilter) ([]models.LevelSummary, error) {
	levels, err := s.listLevels(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(levels))
	for i, l := range levels {
		ids[i] = l.ID
	}
	counts, err := s.levels.LevelCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	enrolled := map[uuid.UUID]models.Enrollment{}
	if actor.UserID != uuid.Nil {
		enrollments, err := s.progress.EnrollmentsByUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		for _, e := range enrollments {
			enrolled[e.LevelID] = e
		}
	}

	summaries := make([]models.LevelSummary, 0, len(levels))
	for _, l := range levels {
		c := counts[l.ID]
		sum := models.LevelSummary{Level: l, VideosCount: c.VideosCount}
		if actor.IsAdmin() {
			users := c.UserCount
			sum.UserCount = &users
		}
		if e, ok := enrolled[l.ID]; ok {
			sum.IsEnrolled = true
			sum.IsCompleted = e.IsCompleted
			sum.CanTakeFinalExam = e.CanTakeFinalExam
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *CatalogService) listLevels(ctx context.Context, f models.LevelFilter) ([]models.Level, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, app_errors.Invalid("min_price must not exceed max_price")
	}
	levels, err := s.levels.ListLevels(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range levels {
		s.withImage(ctx, &levels[i])
	}
	return levels, nil
}

// Level returns the level as the actor sees it. Admins get every link and
// question; clients only those of videos they have opened.
func (s *CatalogService) Level(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.LevelDetail, error) {
	level, err := s.levels.LevelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	videos, err := s.videos.VideosByLevel(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.videos.QuestionsByLevel(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.LevelDetail{Level: *s.withImage(ctx, level), VideosCount: len(videos)}

	progress := map[uuid.UUID]models.VideoProgress{}
	if actor.UserID != uuid.Nil {
		enrollment, err := s.progress.Enrollment(ctx, actor.UserID, id)
		switch {
		case err == nil:
			detail.IsEnrolled = true
			detail.IsCompleted = enrollment.IsCompleted
			detail.CanTakeFinalExam = enrollment.CanTakeFinalExam
			_, rows, err := s.progress.Progress(ctx, *enrollment)
			if err != nil {
				return nil, err
			}
			for _, r := range rows {
				progress[r.VideoID] = r
			}
		case !errors.Is(err, app_errors.ErrLevelNotPurchased):
			return nil, err
		}
	}

	detail.Videos = buildVideoDetails(videos, questions, progress, actor.IsAdmin())
	return detail, nil
}

func buildVideoDetails(videos []models.Video, questions []models.Question, progress map[uuid.UUID]models.VideoProgress, admin bool) []models.VideoDetail {
	byVideo := make(map[uuid.UUID][]models.Question, len(videos))
	for _, q := range questions {
		byVideo[q.VideoID] = append(byVideo[q.VideoID], q)
	}

	out := make([]models.VideoDetail, 0, len(videos))
	for _, v := range videos {
		p := progress[v.ID]
		d := models.VideoDetail{Video: v, IsOpened: p.IsOpened, IsCompleted: p.IsCompleted, Questions: []models.Question{}}
		if admin || p.IsOpened {
			if qs := byVideo[v.ID]; qs != nil {
				d.Questions = qs
			}
		} else {
			d.YoutubeLink = ""
		}
		out = append(out, d)
	}
	return out
}

func (s *CatalogService) WelcomeVideo(ctx context.Context) (*models.WelcomeVideo, error) {
	return s.levels.WelcomeVideo(ctx)
}

func (s *CatalogService) SetWelcomeVideo(ctx context.Context, actor models.Actor, url string) (*models.WelcomeVideo, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, app_errors.Invalid("video_url is required")
	}
	return s.levels.SetWelcomeVideo(ctx, strings.TrimSpace(url))
}

func (s *CatalogService) indexLevel(ctx context.Context, level models.Level) {
	if s.search == nil {
		return
	}
	if err := s.search.Index(ctx, level); err != nil {
		s.log.ErrorErr("failed to index level", err, "level_id", level.ID)
	}
}

func (s *CatalogService) withImage(ctx context.Context, level *models.Level) *models.Level {
	if level.ImageObjectKey == "" || s.images == nil {
		return level
	}
	url, err := s.images.URL(ctx, level.ImageObjectKey)
	if err != nil {
		s.log.ErrorErr("failed to presign level image", err, "level_id", level.ID)
		return level
	}
	level.ImageURL = url
	return level
}

func (s *CatalogService) removeImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.ErrorErr("failed to delete level image", err, "object_key", key)
	}
}
