package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name           string
		correct, wrong int
		want           float64
	}{
		{"empty attempt", 0, 0, 0},
		{"three of four", 3, 1, 75},
		{"eight of ten", 8, 2, 80},
		{"all wrong", 0, 5, 0},
		{"all correct", 4, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.correct, tt.wrong); got != tt.want {
				t.Errorf("Percentage(%d, %d) = %v, want %v", tt.correct, tt.wrong, got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		part, whole int
		want        float64
	}{
		{0, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := Ratio(tt.part, tt.whole); got != tt.want {
			t.Errorf("Ratio(%d, %d) = %v, want %v", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestSubmissionValidate(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		wantErr bool
	}{
		{"valid", Submission{CorrectWords: 1}, false},
		{"empty attempt", Submission{}, false},
		{"at the bound", Submission{CorrectWords: MaxWordCount}, false},
		{"negative correct", Submission{CorrectWords: -1}, true},
		{"negative wrong", Submission{WrongWords: -1}, true},
		{"correct over the bound", Submission{CorrectWords: MaxWordCount + 1}, true},
		{"wrong over the bound", Submission{WrongWords: MaxWordCount + 1}, true},
		{"sum over the bound", Submission{CorrectWords: MaxWordCount, WrongWords: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, app_errors.ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSeedProgress_OpensLowestOrderOnly(t *testing.T) {
	levelID := uuid.New()
	videos := []Video{
		{ID: uuid.New(), LevelID: levelID, Order: 3},
		{ID: uuid.New(), LevelID: levelID, Order: 1},
		{ID: uuid.New(), LevelID: levelID, Order: 2},
	}

	rows := SeedProgress(uuid.New(), videos)
	if len(rows) != len(videos) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(videos))
	}

	opened := 0
	for _, r := range rows {
		if r.IsOpened {
			opened++
			if r.VideoID != videos[1].ID {
				t.Errorf("opened video = %v, want lowest-order video %v", r.VideoID, videos[1].ID)
			}
		}
		if r.IsCompleted {
			t.Errorf("seeded row for %v is completed", r.VideoID)
		}
	}
	if opened != 1 {
		t.Errorf("opened rows = %d, want 1", opened)
	}
	if videos[0].Order != 3 {
		t.Error("SeedProgress must not reorder the caller's slice")
	}
}

func TestSeedProgress_NoVideos(t *testing.T) {
	if rows := SeedProgress(uuid.New(), nil); len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestSortVideos_TieBrokenByID(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	videos := []Video{{ID: b, Order: 1}, {ID: a, Order: 1}}

	SortVideos(videos)
	if videos[0].ID != a {
		t.Errorf("first video = %v, want %v", videos[0].ID, a)
	}
}

func TestNextVideo(t *testing.T) {
	v1, v2 := Video{ID: uuid.New(), Order: 1}, Video{ID: uuid.New(), Order: 2}
	sorted := []Video{v1, v2}

	next, ok := NextVideo(sorted, v1.ID)
	if !ok || next.ID != v2.ID {
		t.Errorf("NextVideo(v1) = %v, %v; want v2, true", next.ID, ok)
	}
	if _, ok := NextVideo(sorted, v2.ID); ok {
		t.Error("NextVideo(last) should report no next video")
	}
	if _, ok := NextVideo(sorted, uuid.New()); ok {
		t.Error("NextVideo(unknown) should report no next video")
	}
}

func TestAllCompleted(t *testing.T) {
	tests := []struct {
		name string
		rows []VideoProgress
		want bool
	}{
		{"no videos", nil, false},
		{"one incomplete", []VideoProgress{{IsCompleted: true}, {IsCompleted: false}}, false},
		{"all complete", []VideoProgress{{IsCompleted: true}, {IsCompleted: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllCompleted(tt.rows); got != tt.want {
				t.Errorf("AllCompleted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyExam(t *testing.T) {
	t.Run("final requires gate", func(t *testing.T) {
		e := Enrollment{}
		if err := e.ApplyExam(ExamFinal, 80); !errors.Is(err, app_errors.ErrExamNotAvailable) {
			t.Fatalf("ApplyExam(final) = %v, want ErrExamNotAvailable", err)
		}
		if e.FinalExamScore != nil || e.IsCompleted {
			t.Error("rejected exam must not change the enrollment")
		}
	})

	t.Run("final without initial", func(t *testing.T) {
		e := Enrollment{CanTakeFinalExam: true}
		if err := e.ApplyExam(ExamFinal, 80); err != nil {
			t.Fatalf("ApplyExam(final) unexpected error: %v", err)
		}
		if e.FinalExamScore == nil || *e.FinalExamScore != 80 {
			t.Errorf("FinalExamScore = %v, want 80", e.FinalExamScore)
		}
		if !e.IsCompleted {
			t.Error("final exam should complete the enrollment")
		}
		if e.ScoreDifference != nil {
			t.Errorf("ScoreDifference = %v, want nil", *e.ScoreDifference)
		}
	})

	t.Run("initial then final", func(t *testing.T) {
		e := Enrollment{CanTakeFinalExam: true}
		_ = e.ApplyExam(ExamInitial, 50)
		_ = e.ApplyExam(ExamInitial, 60)
		if err := e.ApplyExam(ExamFinal, 75); err != nil {
			t.Fatalf("ApplyExam(final) unexpected error: %v", err)
		}
		if *e.InitialExamScore != 60 {
			t.Errorf("InitialExamScore = %v, want latest 60", *e.InitialExamScore)
		}
		if e.ScoreDifference == nil || *e.ScoreDifference != 15 {
			t.Errorf("ScoreDifference = %v, want 15", e.ScoreDifference)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		e := Enrollment{}
		if err := e.ApplyExam("midterm", 10); !errors.Is(err, app_errors.ErrInvalidInput) {
			t.Fatalf("ApplyExam(midterm) = %v, want ErrInvalidInput", err)
		}
	})
}

func TestBuildUserStatistics(t *testing.T) {
	id := uuid.New()

	st := BuildUserStatistics(id, UserCounts{
		PurchasedLevels:   3,
		CompletedLevels:   1,
		InitialScoreSum:   100,
		InitialScoreCount: 2,
		FinalScoreSum:     80,
		FinalScoreCount:   1,
		ExamsTaken:        3,
		QuestionsAnswered: 3,
		QuestionScoreSum:  200,
	})

	if st.CompletionRate != 33.33 {
		t.Errorf("CompletionRate = %v, want 33.33", st.CompletionRate)
	}
	if st.AverageInitialScore != 50 || st.AverageFinalScore != 80 {
		t.Errorf("averages = %v/%v, want 50/80", st.AverageInitialScore, st.AverageFinalScore)
	}
	if st.AverageImprovement != 30 {
		t.Errorf("AverageImprovement = %v, want 30", st.AverageImprovement)
	}
	if st.AverageQuestionScore != 66.67 {
		t.Errorf("AverageQuestionScore = %v, want 66.67", st.AverageQuestionScore)
	}

	empty := BuildUserStatistics(id, UserCounts{InitialScoreSum: 40, InitialScoreCount: 1})
	if empty.AverageImprovement != 0 {
		t.Errorf("AverageImprovement without final = %v, want 0", empty.AverageImprovement)
	}
	if empty.CompletionRate != 0 {
		t.Errorf("CompletionRate with no purchases = %v, want 0", empty.CompletionRate)
	}
}
