package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/umojalearning/umoja-backend/config"
	"github.com/umojalearning/umoja-backend/internal/api/http/handler"
	"github.com/umojalearning/umoja-backend/internal/api/http/middleware"
	"github.com/umojalearning/umoja-backend/internal/service/analysis"
	"github.com/umojalearning/umoja-backend/internal/service/assessment"
	"github.com/umojalearning/umoja-backend/internal/service/catalog"
	"github.com/umojalearning/umoja-backend/internal/service/guardian"
	"github.com/umojalearning/umoja-backend/internal/service/profile"
	"github.com/umojalearning/umoja-backend/internal/service/user"
	"github.com/umojalearning/umoja-backend/pkg/idtoken"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg           *config.Config
	Verifier      *idtoken.Verifier
	UserSvc       user.Service
	ProfileSvc    profile.Service
	GuardianSvc   guardian.Service
	CatalogSvc    catalog.Service
	AssessmentSvc assessment.Service
	AnalysisSvc   analysis.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.Verifier)

	authH := handler.NewAuthHandler(r.p.UserSvc)
	dashboardH := handler.NewDashboardHandler(r.p.UserSvc)
	guardianH := handler.NewGuardianHandler(r.p.GuardianSvc, r.p.UserSvc)
	profileH := handler.NewProfileHandler(r.p.ProfileSvc, r.p.UserSvc)
	assessmentH := handler.NewAssessmentHandler(r.p.AssessmentSvc, r.p.CatalogSvc, r.p.ProfileSvc, r.p.UserSvc)
	analysisH := handler.NewAnalysisHandler(r.p.AnalysisSvc, r.p.UserSvc)

	api := app.Group("/api")

	r.registerAuthRoutes(api, authH, dashboardH, authRequired)
	r.registerGuardianRoutes(api, guardianH, authRequired)
	r.registerProfileRoutes(api, profileH, authRequired)
	r.registerAssessmentRoutes(api, assessmentH, analysisH, authRequired)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
