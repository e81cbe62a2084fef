package catalog

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/models"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

type fakeLevels struct {
	levels  map[uuid.UUID]models.Level
	counts  map[uuid.UUID]models.LevelCounts
	welcome *models.WelcomeVideo
	listed  []models.LevelFilter
}

func (f *fakeLevels) CreateLevel(_ context.Context, l models.Level) (*models.Level, error) {
	l.ID = uuid.New()
	f.levels[l.ID] = l
	return &l, nil
}

func (f *fakeLevels) LevelByID(_ context.Context, id uuid.UUID) (*models.Level, error) {
	l, ok := f.levels[id]
	if !ok {
		return nil, app_errors.ErrLevelNotFound
	}
	return &l, nil
}

func (f *fakeLevels) ListLevels(_ context.Context, filter models.LevelFilter) ([]models.Level, error) {
	f.listed = append(f.listed, filter)
	var out []models.Level
	for _, l := range f.levels {
		if filter.Name == "" || strings.Contains(strings.ToLower(l.Name), strings.ToLower(filter.Name)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLevels) LevelsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Level, error) {
	var out []models.Level
	for id, l := range f.levels {
		if slices.Contains(ids, id) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLevels) LevelCounts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.LevelCounts, error) {
	out := make(map[uuid.UUID]models.LevelCounts, len(ids))
	for _, id := range ids {
		if c, ok := f.counts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeLevels) UpdateLevel(_ context.Context, id uuid.UUID, upd models.LevelUpdate) (*models.Level, error) {
	l, ok := f.levels[id]
	if !ok {
		return nil, app_errors.ErrLevelNotFound
	}
	upd.Apply(&l)
	f.levels[id] = l
	return &l, nil
}

func (f *fakeLevels) SetImage(_ context.Context, id uuid.UUID, key string) (string, error) {
	l, ok := f.levels[id]
	if !ok {
		return "", app_errors.ErrLevelNotFound
	}
	prev := l.ImageObjectKey
	l.ImageObjectKey = key
	f.levels[id] = l
	return prev, nil
}

func (f *fakeLevels) DeleteLevel(_ context.Context, id uuid.UUID) (string, error) {
	l, ok := f.levels[id]
	if !ok {
		return "", app_errors.ErrLevelNotFound
	}
	delete(f.levels, id)
	return l.ImageObjectKey, nil
}

func (f *fakeLevels) WelcomeVideo(context.Context) (*models.WelcomeVideo, error) {
	if f.welcome == nil {
		return nil, app_errors.ErrWelcomeVideoNotFound
	}
	return f.welcome, nil
}

func (f *fakeLevels) SetWelcomeVideo(_ context.Context, url string) (*models.WelcomeVideo, error) {
	f.welcome = &models.WelcomeVideo{VideoURL: url}
	return f.welcome, nil
}

type fakeVideos struct {
	videos    []models.Video
	questions []models.Question
	swapped   bool
}

func (f *fakeVideos) CreateVideo(_ context.Context, v models.Video) (*models.Video, error) {
	v.ID = uuid.New()
	f.videos = append(f.videos, v)
	return &v, nil
}

func (f *fakeVideos) VideoByID(_ context.Context, id uuid.UUID) (*models.Video, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, app_errors.ErrVideoNotFound
}

func (f *fakeVideos) VideosByLevel(_ context.Context, levelID uuid.UUID) ([]models.Video, error) {
	var out []models.Video
	for _, v := range f.videos {
		if v.LevelID == levelID {
			out = append(out, v)
		}
	}
	models.SortVideos(out)
	return out, nil
}

func (f *fakeVideos) AllVideos(context.Context) ([]models.Video, error) { return f.videos, nil }

func (f *fakeVideos) UpdateVideo(_ context.Context, id uuid.UUID, _ models.VideoUpdate) (*models.Video, error) {
	return f.VideoByID(context.Background(), id)
}

func (f *fakeVideos) DeleteVideo(context.Context, uuid.UUID) error { return nil }

func (f *fakeVideos) SwapVideos(context.Context, uuid.UUID, uuid.UUID) ([]models.Video, error) {
	f.swapped = true
	return f.videos, nil
}

func (f *fakeVideos) CreateQuestion(_ context.Context, q models.Question) (*models.Question, error) {
	q.ID = uuid.New()
	f.questions = append(f.questions, q)
	return &q, nil
}

func (f *fakeVideos) QuestionByID(_ context.Context, id uuid.UUID) (*models.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, app_errors.ErrQuestionNotFound
}

func (f *fakeVideos) QuestionsByVideo(_ context.Context, videoID uuid.UUID) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		if q.VideoID == videoID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeVideos) QuestionsByLevel(_ context.Context, levelID uuid.UUID) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		v, err := f.VideoByID(context.Background(), q.VideoID)
		if err == nil && v.LevelID == levelID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeVideos) AllQuestions(context.Context) ([]models.Question, error) {
	return f.questions, nil
}

func (f *fakeVideos) UpdateQuestion(_ context.Context, id uuid.UUID, _ models.QuestionUpdate) (*models.Question, error) {
	return f.QuestionByID(context.Background(), id)
}

func (f *fakeVideos) DeleteQuestion(context.Context, uuid.UUID) error { return nil }

type fakeProgress struct {
	enrollments map[uuid.UUID]models.Enrollment
	rows        []models.VideoProgress
}

func (f *fakeProgress) Enrollment(_ context.Context, userID, _ uuid.UUID) (*models.Enrollment, error) {
	e, ok := f.enrollments[userID]
	if !ok {
		return nil, app_errors.ErrLevelNotPurchased
	}
	return &e, nil
}

func (f *fakeProgress) EnrollmentsByUser(_ context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	e, ok := f.enrollments[userID]
	if !ok {
		return []models.Enrollment{}, nil
	}
	return []models.Enrollment{e}, nil
}

func (f *fakeProgress) Progress(context.Context, models.Enrollment) ([]models.Video, []models.VideoProgress, error) {
	return nil, f.rows, nil
}

type fakeSearch struct {
	indexed []uuid.UUID
	deleted []uuid.UUID
	hits    []uuid.UUID
	err     error
}

func (f *fakeSearch) Index(_ context.Context, l models.Level) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, l.ID)
	return nil
}

func (f *fakeSearch) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeSearch) Search(context.Context, string, int) ([]uuid.UUID, error) {
	return f.hits, f.err
}

type fakeImages struct {
	deleted []string
}

func (f *fakeImages) Upload(_ context.Context, owner uuid.UUID, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	return "levels/" + owner.String() + "/" + filename, nil
}

func (f *fakeImages) URL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	svc      *CatalogService
	levels   *fakeLevels
	videos   *fakeVideos
	progress *fakeProgress
	search   *fakeSearch
	images   *fakeImages
}

func newFixture() *fixture {
	f := &fixture{
		levels:   &fakeLevels{levels: map[uuid.UUID]models.Level{}, counts: map[uuid.UUID]models.LevelCounts{}},
		videos:   &fakeVideos{},
		progress: &fakeProgress{enrollments: map[uuid.UUID]models.Enrollment{}},
		search:   &fakeSearch{},
		images:   &fakeImages{},
	}
	f.svc = NewCatalogService(logger.NewDiscard(), f.levels, f.videos, f.progress, f.search, f.images)
	return f
}

var (
	admin  = models.Actor{UserID: uuid.New(), Role: models.AdminRole}
	client = models.Actor{UserID: uuid.New(), Role: models.ClientRole}
)

func TestCreateLevel(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Actor
		level   models.Level
		wantErr error
	}{
		{name: "admin", actor: admin, level: models.Level{Name: "Level 1", LevelNumber: 1, Price: 10}},
		{name: "client", actor: client, level: models.Level{Name: "Level 1", LevelNumber: 1}, wantErr: app_errors.ErrAdminAccessRequired},
		{name: "empty name", actor: admin, level: models.Level{LevelNumber: 1}, wantErr: app_errors.ErrInvalidInput},
		{name: "negative price", actor: admin, level: models.Level{Name: "x", LevelNumber: 1, Price: -1}, wantErr: app_errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			got, err := f.svc.CreateLevel(context.Background(), tt.actor, tt.level)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(f.search.indexed) != 1 || f.search.indexed[0] != got.ID {
				t.Errorf("indexed = %v, want [%s]", f.search.indexed, got.ID)
			}
		})
	}
}

func TestCreateLevel_IndexFailureIsIgnored(t *testing.T) {
	f := newFixture()
	f.search.err = errors.New("cluster down")

	got, err := f.svc.CreateLevel(context.Background(), admin, models.Level{Name: "Level 1", LevelNumber: 1})
	if err != nil {
		t.Fatalf("CreateLevel: %v", err)
	}
	if _, ok := f.levels.levels[got.ID]; !ok {
		t.Error("level not stored")
	}
}

func TestDeleteLevel_CleansUp(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.levels.levels[id] = models.Level{ID: id, Name: "L", LevelNumber: 1, ImageObjectKey: "levels/old.png"}

	if err := f.svc.DeleteLevel(context.Background(), admin, id); err != nil {
		t.Fatalf("DeleteLevel: %v", err)
	}
	if !slices.Equal(f.images.deleted, []string{"levels/old.png"}) {
		t.Errorf("deleted images = %v", f.images.deleted)
	}
	if !slices.Equal(f.search.deleted, []uuid.UUID{id}) {
		t.Errorf("deleted from index = %v", f.search.deleted)
	}
}

func TestUploadLevelImage(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.levels.levels[id] = models.Level{ID: id, Name: "L", LevelNumber: 1, ImageObjectKey: "levels/old.png"}

	_, err := f.svc.UploadLevelImage(context.Background(), admin, id, models.Upload{
		Filename: "doc.pdf", ContentType: "application/pdf", Size: 10, Reader: strings.NewReader("x"),
	})
	if !errors.Is(err, app_errors.ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}

	got, err := f.svc.UploadLevelImage(context.Background(), admin, id, models.Upload{
		Filename: "cover.png", ContentType: "image/png", Size: 10, Reader: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("UploadLevelImage: %v", err)
	}
	if !strings.HasSuffix(got.ImageURL, "cover.png") {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}
	if !slices.Equal(f.images.deleted, []string{"levels/old.png"}) {
		t.Errorf("deleted = %v, want previous image removed", f.images.deleted)
	}
}

func TestListLevels_InvalidPriceRange(t *testing.T) {
	f := newFixture()
	lo, hi := 10.0, 5.0
	_, err := f.svc.ListLevels(context.Background(), client, models.LevelFilter{MinPrice: &lo, MaxPrice: &hi})
	if !errors.Is(err, app_errors.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestListLevels_ViewerState(t *testing.T) {
	f := newFixture()
	enrolledID, otherID := uuid.New(), uuid.New()
	f.levels.levels[enrolledID] = models.Level{ID: enrolledID, Name: "Vowels", LevelNumber: 1}
	f.levels.levels[otherID] = models.Level{ID: otherID, Name: "Consonants", LevelNumber: 2}
	f.levels.counts[enrolledID] = models.LevelCounts{VideosCount: 3, UserCount: 7}
	f.levels.counts[otherID] = models.LevelCounts{VideosCount: 1}

	student := models.Actor{UserID: uuid.New(), Role: models.ClientRole}
	f.progress.enrollments[student.UserID] = models.Enrollment{
		UserID: student.UserID, LevelID: enrolledID, IsCompleted: true, CanTakeFinalExam: true,
	}

	tests := []struct {
		name         string
		actor        models.Actor
		wantEnrolled bool
		wantUsers    bool
	}{
		{name: "anonymous", actor: models.Actor{}},
		{name: "enrolled client", actor: student, wantEnrolled: true},
		{name: "admin", actor: admin, wantUsers: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ListLevels(context.Background(), tt.actor, models.LevelFilter{})
			if err != nil {
				t.Fatalf("ListLevels: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			for _, l := range got {
				want := f.levels.counts[l.ID]
				if l.VideosCount != want.VideosCount {
					t.Errorf("%s: videos_count = %d, want %d", l.Name, l.VideosCount, want.VideosCount)
				}
				if tt.wantUsers {
					if l.UserCount == nil || *l.UserCount != want.UserCount {
						t.Errorf("%s: user_count = %v, want %d", l.Name, l.UserCount, want.UserCount)
					}
				} else if l.UserCount != nil {
					t.Errorf("%s: user_count leaked to non-admin: %d", l.Name, *l.UserCount)
				}

				enrolled := tt.wantEnrolled && l.ID == enrolledID
				if l.IsEnrolled != enrolled || l.IsCompleted != enrolled || l.CanTakeFinalExam != enrolled {
					t.Errorf("%s: enrolled/completed/final = %v/%v/%v, want all %v",
						l.Name, l.IsEnrolled, l.IsCompleted, l.CanTakeFinalExam, enrolled)
				}
			}
		})
	}
}

func TestSearchLevels(t *testing.T) {
	f := newFixture()
	first, second := uuid.New(), uuid.New()
	f.levels.levels[first] = models.Level{ID: first, Name: "Vowels"}
	f.levels.levels[second] = models.Level{ID: second, Name: "Consonants"}

	t.Run("keeps rank", func(t *testing.T) {
		f.search.hits = []uuid.UUID{second, uuid.New(), first}
		got, err := f.svc.SearchLevels(context.Background(), "o")
		if err != nil {
			t.Fatalf("SearchLevels: %v", err)
		}
		if len(got) != 2 || got[0].ID != second || got[1].ID != first {
			t.Errorf("got %v, want [%s %s]", got, second, first)
		}
	})

	t.Run("falls back on index failure", func(t *testing.T) {
		f.search.err = errors.New("cluster down")
		defer func() { f.search.err = nil }()
		got, err := f.svc.SearchLevels(context.Background(), "vow")
		if err != nil {
			t.Fatalf("SearchLevels: %v", err)
		}
		if len(got) != 1 || got[0].ID != first {
			t.Errorf("got %v, want only %s", got, first)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := f.svc.SearchLevels(context.Background(), "  ")
		if !errors.Is(err, app_errors.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestLevel_Redaction(t *testing.T) {
	f := newFixture()
	levelID := uuid.New()
	f.levels.levels[levelID] = models.Level{ID: levelID, Name: "L", LevelNumber: 1}
	v1 := models.Video{ID: uuid.New(), LevelID: levelID, YoutubeLink: "https://y/1", Order: 1}
	v2 := models.Video{ID: uuid.New(), LevelID: levelID, YoutubeLink: "https://y/2", Order: 2}
	f.videos.videos = []models.Video{v2, v1}
	f.videos.questions = []models.Question{
		{ID: uuid.New(), VideoID: v1.ID, Text: "q1", Order: 1},
		{ID: uuid.New(), VideoID: v2.ID, Text: "q2", Order: 1},
	}

	enrolled := models.Actor{UserID: uuid.New(), Role: models.ClientRole}
	f.progress.enrollments[enrolled.UserID] = models.Enrollment{UserID: enrolled.UserID, LevelID: levelID}
	f.progress.rows = []models.VideoProgress{
		{VideoID: v1.ID, IsOpened: true},
		{VideoID: v2.ID},
	}

	tests := []struct {
		name         string
		actor        models.Actor
		wantEnrolled bool
		wantLinks    []string
		wantQs       []int
	}{
		{name: "admin", actor: admin, wantLinks: []string{"https://y/1", "https://y/2"}, wantQs: []int{1, 1}},
		{name: "enrolled client", actor: enrolled, wantEnrolled: true, wantLinks: []string{"https://y/1", ""}, wantQs: []int{1, 0}},
		{name: "other client", actor: client, wantLinks: []string{"", ""}, wantQs: []int{0, 0}},
		{name: "anonymous", actor: models.Actor{}, wantLinks: []string{"", ""}, wantQs: []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Level(context.Background(), tt.actor, levelID)
			if err != nil {
				t.Fatalf("Level: %v", err)
			}
			if got.IsEnrolled != tt.wantEnrolled {
				t.Errorf("IsEnrolled = %v, want %v", got.IsEnrolled, tt.wantEnrolled)
			}
			if got.VideosCount != 2 {
				t.Errorf("VideosCount = %d, want 2", got.VideosCount)
			}
			for i, v := range got.Videos {
				if v.YoutubeLink != tt.wantLinks[i] {
					t.Errorf("video %d link = %q, want %q", i, v.YoutubeLink, tt.wantLinks[i])
				}
				if len(v.Questions) != tt.wantQs[i] {
					t.Errorf("video %d questions = %d, want %d", i, len(v.Questions), tt.wantQs[i])
				}
			}
		})
	}
}

func TestSwapVideos(t *testing.T) {
	f := newFixture()
	levelID := uuid.New()
	v1 := models.Video{ID: uuid.New(), LevelID: levelID, Order: 1}
	v2 := models.Video{ID: uuid.New(), LevelID: levelID, Order: 2}
	f.videos.videos = []models.Video{v1, v2}

	tests := []struct {
		name    string
		actor   models.Actor
		level   uuid.UUID
		first   uuid.UUID
		second  uuid.UUID
		wantErr error
	}{
		{name: "same video", actor: admin, level: levelID, first: v1.ID, second: v1.ID, wantErr: app_errors.ErrInvalidInput},
		{name: "client", actor: client, level: levelID, first: v1.ID, second: v2.ID, wantErr: app_errors.ErrAdminAccessRequired},
		{name: "wrong level", actor: admin, level: uuid.New(), first: v1.ID, second: v2.ID, wantErr: app_errors.ErrVideosDiffer},
		{name: "ok", actor: admin, level: levelID, first: v1.ID, second: v2.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SwapVideos(context.Background(), tt.actor, tt.level, tt.first, tt.second)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if !f.videos.swapped {
		t.Error("repository swap not called")
	}
}

func TestVideoQuestions(t *testing.T) {
	f := newFixture()
	levelID := uuid.New()
	v1 := models.Video{ID: uuid.New(), LevelID: levelID, Order: 1}
	v2 := models.Video{ID: uuid.New(), LevelID: levelID, Order: 2}
	f.videos.videos = []models.Video{v1, v2}
	f.videos.questions = []models.Question{{ID: uuid.New(), VideoID: v1.ID, Text: "q"}}
	f.progress.enrollments[client.UserID] = models.Enrollment{UserID: client.UserID, LevelID: levelID}
	f.progress.rows = []models.VideoProgress{{VideoID: v1.ID, IsOpened: true}, {VideoID: v2.ID}}

	stranger := models.Actor{UserID: uuid.New(), Role: models.ClientRole}

	tests := []struct {
		name    string
		actor   models.Actor
		video   uuid.UUID
		want    int
		wantErr error
	}{
		{name: "opened", actor: client, video: v1.ID, want: 1},
		{name: "closed", actor: client, video: v2.ID, wantErr: app_errors.ErrVideoNotOpened},
		{name: "not enrolled", actor: stranger, video: v1.ID, wantErr: app_errors.ErrLevelNotPurchased},
		{name: "admin", actor: admin, video: v2.ID, want: 0},
		{name: "unknown video", actor: admin, video: uuid.New(), wantErr: app_errors.ErrVideoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.VideoQuestions(context.Background(), tt.actor, tt.video)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestWelcomeVideo(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.WelcomeVideo(context.Background()); !errors.Is(err, app_errors.ErrWelcomeVideoNotFound) {
		t.Fatalf("err = %v, want ErrWelcomeVideoNotFound", err)
	}
	if _, err := f.svc.SetWelcomeVideo(context.Background(), client, "https://y/w"); !errors.Is(err, app_errors.ErrAdminAccessRequired) {
		t.Fatalf("err = %v, want ErrAdminAccessRequired", err)
	}
	if _, err := f.svc.SetWelcomeVideo(context.Background(), admin, " "); !errors.Is(err, app_errors.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	got, err := f.svc.SetWelcomeVideo(context.Background(), admin, "https://y/w")
	if err != nil || got.VideoURL != "https://y/w" {
		t.Fatalf("SetWelcomeVideo = %v, %v", got, err)
	}
}
