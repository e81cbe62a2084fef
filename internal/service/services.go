package service

import (
	"github.com/mahmoodhamdi/sounds-api/internal/service/auth"
	"github.com/mahmoodhamdi/sounds-api/internal/service/catalog"
	"github.com/mahmoodhamdi/sounds-api/internal/service/progress"
	"github.com/mahmoodhamdi/sounds-api/internal/service/report"
	"github.com/mahmoodhamdi/sounds-api/internal/service/statistics"
)

type Collection struct {
	*auth.AuthService
	*catalog.CatalogService
	*progress.ProgressService
	*statistics.StatisticsService
	*report.ReportService
}
