package statistics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type fakeAgg struct {
	calls  int
	top    int
	counts models.UserCounts
}

func (f *fakeAgg) PlatformStatistics(_ context.Context, top int) (*models.PlatformStatistics, error) {
	f.calls++
	f.top = top
	return &models.PlatformStatistics{TotalUsers: 3, TotalPurchases: 4, CompletedLevels: 1, CompletionRate: 25}, nil
}

func (f *fakeAgg) UserCounts(context.Context, uuid.UUID) (*models.UserCounts, error) {
	return &f.counts, nil
}

type fakeUsers map[uuid.UUID]bool

func (f fakeUsers) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if !f[id] {
		return nil, app_errors.ErrUserNotFound
	}
	return &models.User{ID: id, Name: "Student"}, nil
}

type fakeCache struct {
	stored  *models.PlatformStatistics
	readErr error
	writes  int
}

func (f *fakeCache) Platform(context.Context) (*models.PlatformStatistics, bool, error) {
	if f.readErr != nil {
		return nil, false, f.readErr
	}
	return f.stored, f.stored != nil, nil
}

func (f *fakeCache) SetPlatform(_ context.Context, st *models.PlatformStatistics) error {
	f.writes++
	f.stored = st
	return nil
}

var admin = models.Actor{UserID: uuid.New(), Role: models.AdminRole}

func TestPlatform(t *testing.T) {
	tests := []struct {
		name      string
		cache     *fakeCache
		calls     int
		wantCalls int
	}{
		{name: "miss then hit", cache: &fakeCache{}, calls: 2, wantCalls: 1},
		{name: "cache down", cache: &fakeCache{readErr: errors.New("connection refused")}, calls: 2, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := &fakeAgg{}
			svc := NewStatisticsService(logger.NewDiscard(), agg, fakeUsers{}, tt.cache)
			for i := 0; i < tt.calls; i++ {
				st, err := svc.Platform(context.Background(), admin)
				if err != nil {
					t.Fatalf("Platform: %v", err)
				}
				if st.CompletionRate != 25 {
					t.Errorf("CompletionRate = %v, want 25", st.CompletionRate)
				}
			}
			if agg.calls != tt.wantCalls {
				t.Errorf("aggregator calls = %d, want %d", agg.calls, tt.wantCalls)
			}
			if agg.top != PopularLevelsLimit {
				t.Errorf("top = %d, want %d", agg.top, PopularLevelsLimit)
			}
		})
	}
}

func TestPlatform_RequiresAdmin(t *testing.T) {
	svc := NewStatisticsService(logger.NewDiscard(), &fakeAgg{}, fakeUsers{}, nil)
	_, err := svc.Platform(context.Background(), models.Actor{UserID: uuid.New(), Role: models.ClientRole})
	if !errors.Is(err, app_errors.ErrAdminAccessRequired) {
		t.Fatalf("err = %v, want ErrAdminAccessRequired", err)
	}
}

func TestUser(t *testing.T) {
	known := uuid.New()
	agg := &fakeAgg{counts: models.UserCounts{
		PurchasedLevels:   2,
		CompletedLevels:   1,
		InitialScoreSum:   50,
		InitialScoreCount: 1,
		FinalScoreSum:     80,
		FinalScoreCount:   1,
		ExamsTaken:        2,
		QuestionsAnswered: 3,
		QuestionScoreSum:  200,
	}}
	svc := NewStatisticsService(logger.NewDiscard(), agg, fakeUsers{known: true}, nil)

	st, err := svc.User(context.Background(), admin, known)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	want := models.UserStatistics{
		UserID:               known,
		UserName:             "Student",
		PurchasedLevels:      2,
		CompletedLevels:      1,
		CompletionRate:       50,
		AverageInitialScore:  50,
		AverageFinalScore:    80,
		AverageImprovement:   30,
		TotalExamsTaken:      2,
		QuestionsAnswered:    3,
		AverageQuestionScore: 66.67,
	}
	if *st != want {
		t.Errorf("got %+v, want %+v", *st, want)
	}

	if _, err := svc.User(context.Background(), admin, uuid.New()); !errors.Is(err, app_errors.ErrUserNotFound) {
		t.Errorf("unknown user: err = %v, want ErrUserNotFound", err)
	}
}
