package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/internal/service/policy"
)

// AddVideo appends a video to the level. A zero order means "after the last video".
func (s *CatalogService) AddVideo(ctx context.Context, actor models.Actor, video models.Video) (*models.Video, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(video.YoutubeLink) == "" {
		return nil, app_errors.Invalid("youtube_link is required")
	}
	if video.Order < 0 {
		return nil, app_errors.Invalid("order must not be negative")
	}
	return s.videos.CreateVideo(ctx, video)
}

func (s *CatalogService) UpdateVideo(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.VideoUpdate) (*models.Video, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if upd.YoutubeLink != nil && strings.TrimSpace(*upd.YoutubeLink) == "" {
		return nil, app_errors.Invalid("youtube_link must not be empty")
	}
	if upd.Order != nil && *upd.Order < 1 {
		return nil, app_errors.Invalid("order must be positive")
	}
	return s.videos.UpdateVideo(ctx, id, upd)
}

func (s *CatalogService) DeleteVideo(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	return s.videos.DeleteVideo(ctx, id)
}

// SwapVideos exchanges the sequence positions of two videos of levelID.
func (s *CatalogService) SwapVideos(ctx context.Context, actor models.Actor, levelID, firstID, secondID uuid.UUID) ([]models.Video, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if firstID == secondID {
		return nil, app_errors.Invalid("cannot swap a video with itself")
	}
	first, err := s.videos.VideoByID(ctx, firstID)
	if err != nil {
		return nil, err
	}
	if first.LevelID != levelID {
		return nil, app_errors.ErrVideosDiffer
	}
	return s.videos.SwapVideos(ctx, firstID, secondID)
}

func (s *CatalogService) AllVideos(ctx context.Context, actor models.Actor) ([]models.Video, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.videos.AllVideos(ctx)
}

// AddQuestion appends a question to the video. A zero order means "after the last question".
func (s *CatalogService) AddQuestion(ctx context.Context, actor models.Actor, question models.Question) (*models.Question, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question.Text) == "" {
		return nil, app_errors.Invalid("text is required")
	}
	if question.Order < 0 {
		return nil, app_errors.Invalid("order must not be negative")
	}
	return s.videos.CreateQuestion(ctx, question)
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if upd.Text != nil && strings.TrimSpace(*upd.Text) == "" {
		return nil, app_errors.Invalid("text must not be empty")
	}
	if upd.Order != nil && *upd.Order < 1 {
		return nil, app_errors.Invalid("order must be positive")
	}
	return s.videos.UpdateQuestion(ctx, id, upd)
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	return s.videos.DeleteQuestion(ctx, id)
}

func (s *CatalogService) AllQuestions(ctx context.Context, actor models.Actor) ([]models.Question, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.videos.AllQuestions(ctx)
}

// VideoQuestions lists the questions of a video. Clients must have the
// video opened under their enrollment.
func (s *CatalogService) VideoQuestions(ctx context.Context, actor models.Actor, videoID uuid.UUID) ([]models.Question, error) {
	video, err := s.videos.VideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		enrollment, err := s.progress.Enrollment(ctx, actor.UserID, video.LevelID)
		if err != nil {
			return nil, err
		}
		_, rows, err := s.progress.Progress(ctx, *enrollment)
		if err != nil {
			return nil, err
		}
		opened := false
		for _, r := range rows {
			if r.VideoID == videoID {
				opened = r.IsOpened
				break
			}
		}
		if !opened {
			return nil, app_errors.ErrVideoNotOpened
		}
	}

	return s.videos.QuestionsByVideo(ctx, videoID)
}
