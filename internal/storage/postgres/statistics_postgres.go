package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoodhamdi/sounds-api/internal/models"
)

type StatisticsPostgres struct {
	db *pgxpool.Pool
}

func NewStatisticsPostgres(db *pgxpool.Pool) *StatisticsPostgres {
	return &StatisticsPostgres{db: db}
}

// PlatformStatistics counts client users, levels and enrollments and lists
// the top levels by enrollment count.
func (r *StatisticsPostgres) PlatformStatistics(ctx context.Context, top int) (*models.PlatformStatistics, error) {
	var st models.PlatformStatistics
	err := r.db.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM users WHERE role = 'client'),
		       (SELECT count(*) FROM levels),
		       (SELECT count(*) FROM enrollments),
		       (SELECT count(*) FROM enrollments WHERE is_completed)
	`).Scan(&st.TotalUsers, &st.TotalLevels, &st.TotalPurchases, &st.CompletedLevels)
	if err != nil {
		return nil, storageErr("failed to count platform totals", err)
	}
	st.CompletionRate = models.Ratio(st.CompletedLevels, st.TotalPurchases)

	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.name, count(e.id) AS purchases
		  FROM levels l
		  JOIN enrollments e ON e.level_id = l.id
		 GROUP BY l.id, l.name
		 ORDER BY purchases DESC, l.level_number, l.id
		 LIMIT $1
	`, top)
	if err != nil {
		return nil, storageErr("failed to query popular levels", err)
	}
	defer rows.Close()

	st.MostPopularLevels = []models.PopularLevel{}
	for rows.Next() {
		var p models.PopularLevel
		if err := rows.Scan(&p.LevelID, &p.Name, &p.Purchases); err != nil {
			return nil, storageErr("failed to scan popular level", err)
		}
		st.MostPopularLevels = append(st.MostPopularLevels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate popular levels", err)
	}
	return &st, nil
}

func (r *StatisticsPostgres) UserCounts(ctx context.Context, userID uuid.UUID) (*models.UserCounts, error) {
	var c models.UserCounts
	err := r.db.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM enrollments WHERE user_id = $1),
		       (SELECT count(*) FROM enrollments WHERE user_id = $1 AND is_completed),
		       COALESCE((SELECT sum(percentage) FROM exam_results WHERE user_id = $1 AND type = 'initial'), 0),
		       (SELECT count(*) FROM exam_results WHERE user_id = $1 AND type = 'initial'),
		       COALESCE((SELECT sum(percentage) FROM exam_results WHERE user_id = $1 AND type = 'final'), 0),
		       (SELECT count(*) FROM exam_results WHERE user_id = $1 AND type = 'final'),
		       (SELECT count(*) FROM exam_results WHERE user_id = $1),
		       (SELECT count(*) FROM question_answers WHERE user_id = $1),
		       COALESCE((SELECT sum(percentage) FROM question_answers WHERE user_id = $1), 0)
	`, userID).Scan(
		&c.PurchasedLevels, &c.CompletedLevels,
		&c.InitialScoreSum, &c.InitialScoreCount,
		&c.FinalScoreSum, &c.FinalScoreCount,
		&c.ExamsTaken, &c.QuestionsAnswered, &c.QuestionScoreSum,
	)
	if err != nil {
		return nil, storageErr("failed to aggregate user statistics", err)
	}
	return &c, nil
}
