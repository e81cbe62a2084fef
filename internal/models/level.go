package models

import (
	"bytes"
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

type Level struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	LevelNumber         int       `json:"level_number"`
	WelcomeVideoURL     string    `json:"welcome_video_url"`
	ImageObjectKey      string    `json:"-"`
	ImageURL            string    `json:"image_url,omitempty"`
	Price               float64   `json:"price"`
	InitialExamQuestion string    `json:"initial_exam_question"`
	FinalExamQuestion   string    `json:"final_exam_question"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type LevelUpdate struct {
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	LevelNumber         *int     `json:"level_number"`
	WelcomeVideoURL     *string  `json:"welcome_video_url"`
	Price               *float64 `json:"price"`
	InitialExamQuestion *string  `json:"initial_exam_question"`
	FinalExamQuestion   *string  `json:"final_exam_question"`
}

// Apply copies the non-nil fields of u onto l.
func (u LevelUpdate) Apply(l *Level) {
	if u.Name != nil {
		l.Name = *u.Name
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.LevelNumber != nil {
		l.LevelNumber = *u.LevelNumber
	}
	if u.WelcomeVideoURL != nil {
		l.WelcomeVideoURL = *u.WelcomeVideoURL
	}
	if u.Price != nil {
		l.Price = *u.Price
	}
	if u.InitialExamQuestion != nil {
		l.InitialExamQuestion = *u.InitialExamQuestion
	}
	if u.FinalExamQuestion != nil {
		l.FinalExamQuestion = *u.FinalExamQuestion
	}
}

type LevelFilter struct {
	MinPrice    *float64
	MaxPrice    *float64
	LevelNumber *int
	Name        string
}

type Video struct {
	ID          uuid.UUID `json:"id"`
	LevelID     uuid.UUID `json:"level_id"`
	Name        string    `json:"name"`
	YoutubeLink string    `json:"youtube_link"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

type VideoUpdate struct {
	Name        *string `json:"name"`
	YoutubeLink *string `json:"youtube_link"`
	Order       *int    `json:"order"`
}

type Question struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	Text      string    `json:"text"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type QuestionUpdate struct {
	Text  *string `json:"text"`
	Order *int    `json:"order"`
}

// VideoDetail is a video as one viewer sees it. Closed videos lose their
// link and questions for clients.
type VideoDetail struct {
	Video
	IsOpened    bool       `json:"is_opened"`
	IsCompleted bool       `json:"is_completed"`
	Questions   []Question `json:"questions"`
}

type LevelDetail struct {
	Level
	VideosCount      int           `json:"videos_count"`
	IsEnrolled       bool          `json:"is_enrolled"`
	IsCompleted      bool          `json:"is_completed"`
	CanTakeFinalExam bool          `json:"can_take_final_exam"`
	Videos           []VideoDetail `json:"videos"`
}

// LevelCounts holds per-level aggregates shown in listings.
type LevelCounts struct {
	VideosCount int
	UserCount   int
}

// LevelSummary is a list entry as one viewer sees it. UserCount is filled
// for admins only.
type LevelSummary struct {
	Level
	VideosCount      int  `json:"videos_count"`
	UserCount        *int `json:"user_count,omitempty"`
	IsEnrolled       bool `json:"is_enrolled"`
	IsCompleted      bool `json:"is_completed"`
	CanTakeFinalExam bool `json:"can_take_final_exam"`
}

type WelcomeVideo struct {
	VideoURL  string    `json:"video_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortVideos orders videos by their sequence position, ties broken by id.
func SortVideos(videos []Video) {
	slices.SortStableFunc(videos, func(a, b Video) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// NextVideo returns the video following current in an already sorted list.
func NextVideo(sorted []Video, current uuid.UUID) (Video, bool) {
	for i, v := range sorted {
		if v.ID == current {
			if i+1 < len(sorted) {
				return sorted[i+1], true
			}
			return Video{}, false
		}
	}
	return Video{}, false
}
