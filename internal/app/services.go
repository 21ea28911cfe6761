package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/service/analysis"
	"github.com/umojalearning/umoja-backend/internal/service/assessment"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/internal/service/guardian"
	"github.com/umojalearning/umoja-backend/internal/service/profile"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/llm"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideUserService,
		ProvideProfileService,
		ProvideGuardianService,
		ProvideCatalogService,
		ProvideAssessmentService,
		ProvideAnalysisService,
	),
)

func ProvideUserService(db *gorm.DB) user.Service {
	return user.New(db)
}

func ProvideProfileService(db *gorm.DB) profile.Service {
	return profile.New(db)
}

func ProvideGuardianService(db *gorm.DB) guardian.Service {
	return guardian.New(db)
}

func ProvideCatalogService(db *gorm.DB) catalog.Service {
	return catalog.New(db)
}

func ProvideAssessmentService(db *gorm.DB, cat catalog.Service, cfg *config.Config) assessment.Service {
	return assessment.New(db, cat, cfg.Assessment)
}

func ProvideAnalysisService(db *gorm.DB, completer llm.Completer, rdb *redis.Client, cfg *config.Config) analysis.Service {
	return analysis.New(db, completer, analysis.NewRedisLocker(rdb), cfg.Assessment, slog.Default())
}
