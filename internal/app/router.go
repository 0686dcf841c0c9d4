package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lattice-erp/lattice/internal/attendance"
	"github.com/lattice-erp/lattice/internal/auth"
	"github.com/lattice-erp/lattice/internal/catalog"
	"github.com/lattice-erp/lattice/internal/observability"
	"github.com/lattice-erp/lattice/internal/reports"
	"github.com/lattice-erp/lattice/internal/sales"
	"github.com/lattice-erp/lattice/internal/shared"
	"github.com/lattice-erp/lattice/internal/users"
	"github.com/lattice-erp/lattice/jobs"
)

// RouterParams collects every handler mounted on the API router.
type RouterParams struct {
	Config            *Config
	Metrics           *observability.Metrics
	AuthHandler       *auth.Handler
	UserHandler       *users.Handler
	AttendanceHandler *attendance.Handler
	CatalogHandler    *catalog.Handler
	SalesHandler      *sales.Handler
	ReportHandler     *reports.Handler
	JobHandler        *jobs.Handler
	Middlewares       []func(http.Handler) http.Handler
}

// NewRouter assembles the full route tree. Each role prefix carries its
// login route plus the module mounts scoped to that role; the mounts
// register flat patterns so sibling modules share a prefix without
// conflicts.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range p.Middlewares {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}
	if p.JobHandler != nil {
		r.Route("/jobs", p.JobHandler.MountRoutes)
	}

	r.Route("/api/host-admin", func(r chi.Router) {
		r.Post("/login", p.AuthHandler.Login(shared.RoleHostAdmin))
		p.UserHandler.MountHostAdminRoutes(r)
		p.ReportHandler.MountHostAdminRoutes(r)
	})

	r.Route("/api/organization-admin", func(r chi.Router) {
		r.Post("/login", p.AuthHandler.Login(shared.RoleOrgAdmin))
		p.UserHandler.MountOrgAdminRoutes(r)
		p.AttendanceHandler.MountOrgAdminRoutes(r)
		p.CatalogHandler.MountOrgAdminRoutes(r)
		p.ReportHandler.MountOrgAdminRoutes(r)
	})

	r.Route("/api/manager", func(r chi.Router) {
		r.Post("/login", p.AuthHandler.Login(shared.RoleManager))
		p.UserHandler.MountManagerRoutes(r)
		p.AttendanceHandler.MountManagerRoutes(r)
		p.SalesHandler.MountManagerRoutes(r)
		p.ReportHandler.MountManagerRoutes(r)
	})

	r.Route("/api/employee", func(r chi.Router) {
		r.Post("/login", p.AuthHandler.Login(shared.RoleEmployee))
		p.AttendanceHandler.MountEmployeeRoutes(r)
		p.CatalogHandler.MountEmployeeRoutes(r)
		p.SalesHandler.MountEmployeeRoutes(r)
	})

	return r
}
