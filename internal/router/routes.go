package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/leadgenius/api/internal/auth"
	"github.com/octobees/leadgenius/api/internal/config"
	"github.com/octobees/leadgenius/api/internal/handler"
	"github.com/octobees/leadgenius/api/internal/metrics"
	middlewarepkg "github.com/octobees/leadgenius/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Companies     *handler.CompaniesHandler
	CompanyImport *handler.CompanyImportHandler
	Contacts      *handler.ContactsHandler
	Enrich        *handler.EnrichHandler
	EnrichJob     *handler.EnrichJobHandler
	Templates     *handler.TemplatesHandler
	Settings      *handler.SettingsHandler
	Lists         *handler.ListsHandler
	Leads         *handler.LeadsHandler
	Prompt        *handler.PromptSearchHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))
	admin := middlewarepkg.RequireRole("admin")
	enrichLimit := middlewarepkg.RateLimiter(cfg.RateLimitEnrich, "enrichment")

	secured.GET("/companies", handlers.Companies.List)
	secured.POST("/companies", handlers.Companies.Create)
	secured.POST("/companies/import-csv", handlers.CompanyImport.UploadCSV, admin)
	secured.GET("/companies/:id", handlers.Companies.Get)
	secured.PATCH("/companies/:id", handlers.Companies.Update)
	secured.DELETE("/companies/:id", handlers.Companies.Delete)
	secured.GET("/companies/:id/contacts", handlers.Companies.Contacts)
	secured.GET("/companies/:id/insights", handlers.Companies.Insights)

	secured.GET("/contacts", handlers.Contacts.List)
	secured.POST("/contacts", handlers.Contacts.Create)
	secured.GET("/contacts/:id", handlers.Contacts.Get)
	secured.PATCH("/contacts/:id", handlers.Contacts.Update)
	secured.DELETE("/contacts/:id", handlers.Contacts.Delete)

	enrich := secured.Group("", enrichLimit)
	enrich.POST("/contacts/:id/find-email", handlers.Enrich.FindEmail)
	enrich.POST("/contacts/:id/enrich", handlers.Enrich.EnrichContact)
	enrich.POST("/contacts/:id/research", handlers.Enrich.ResearchProfile)
	enrich.POST("/companies/:id/enrich", handlers.Enrich.EnrichCompany)
	enrich.POST("/companies/:id/research", handlers.Enrich.ResearchCompany)
	enrich.POST("/companies/:id/ideal-client", handlers.Enrich.IdealClient)
	enrich.POST("/companies/:id/outreach", handlers.Enrich.Outreach)
	enrich.POST("/companies/:id/insights/:kind", handlers.Enrich.Insight)
	if handlers.EnrichJob != nil {
		enrich.POST("/contacts/:id/enrich/schedule", handlers.EnrichJob.Enqueue)
	}

	secured.GET("/templates", handlers.Templates.List)
	secured.POST("/templates/:id/render", handlers.Templates.Render)

	secured.GET("/settings", handlers.Settings.Get)
	secured.PUT("/settings", handlers.Settings.Update, admin)

	secured.GET("/lists", handlers.Lists.List)
	secured.POST("/lists", handlers.Lists.Create)
	secured.GET("/lists/:id", handlers.Lists.Get)
	secured.DELETE("/lists/:id", handlers.Lists.Delete)
	secured.POST("/lists/:id/companies/:company_id", handlers.Lists.AddCompany)
	secured.DELETE("/lists/:id/companies/:company_id", handlers.Lists.RemoveCompany)

	secured.POST("/leads/search", handlers.Leads.Search, enrichLimit)
	secured.POST("/leads/transform", handlers.Leads.Transform)
	secured.POST("/leads/import", handlers.Leads.Import)
	secured.GET("/leads/history", handlers.Leads.History)
	secured.GET("/leads/history/:id/results", handlers.Leads.Results)
	secured.POST("/leads/parse-prompt", handlers.Prompt.Parse)
}
