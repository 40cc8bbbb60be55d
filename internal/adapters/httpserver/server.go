package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phenrril/headstock/internal/domain"
	"github.com/phenrril/headstock/internal/usecase"
)

// HealthEnv reports which pieces of configuration are present, never their values.
type HealthEnv struct {
	HasDatabaseURL         bool `json:"hasDatabaseUrl"`
	HasCloudinaryCloudName bool `json:"hasCloudinaryCloudName"`
	HasCloudinaryAPIKey    bool `json:"hasCloudinaryApiKey"`
	HasCloudinaryAPISecret bool `json:"hasCloudinaryApiSecret"`
}

type Deps struct {
	Products  *usecase.ProductUC
	Ledger    *usecase.LedgerUC
	Dashboard *usecase.DashboardUC
	Storage   domain.ImageStorage
	// UploadsDir is served under /uploads/ when set.
	UploadsDir string
	Env        HealthEnv
}

type Server struct {
	products  *usecase.ProductUC
	ledger    *usecase.LedgerUC
	dashboard *usecase.DashboardUC
	storage   domain.ImageStorage
	env       HealthEnv
	validate  *validator.Validate
	router    chi.Router
}

func New(d Deps) http.Handler {
	s := &Server{
		products:  d.Products,
		ledger:    d.Ledger,
		dashboard: d.Dashboard,
		storage:   d.Storage,
		env:       d.Env,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		router:    chi.NewRouter(),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := newHTTPMetrics(reg)

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(Logging)
	r.Use(Recovery)
	r.Use(metrics.instrument)

	s.routes()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if d.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadsDir))))
	}
	return r
}

func (s *Server) routes() {
	r := s.router
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Post("/", s.createProduct)
		r.Delete("/", s.deleteProductByBody)
		r.Post("/bulk-archive", s.bulkArchive)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getProduct)
			r.Patch("/", s.updateProduct)
			r.Delete("/", s.deleteProduct)
			r.Get("/figures", s.productFigures)
			r.Put("/ledger", s.syncLedger)
			r.Post("/images/import", s.importListingImages)
		})
	})

	r.Route("/incomes", func(r chi.Router) {
		r.Get("/", s.listIncomes)
		r.Post("/", s.createIncome)
		r.Patch("/", s.updateIncome)
		r.Delete("/", s.deleteIncome)
		r.Patch("/{id}", s.updateIncome)
		r.Delete("/{id}", s.deleteIncome)
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", s.listExpenses)
		r.Post("/", s.createExpense)
		r.Patch("/", s.updateExpense)
		r.Delete("/", s.deleteExpense)
		r.Patch("/{id}", s.updateExpense)
		r.Delete("/{id}", s.deleteExpense)
	})

	r.Post("/figures", s.figures)
	r.Get("/rate", s.rate)
	r.Get("/dashboard", s.getDashboard)
	r.Get("/export/products.xlsx", s.exportXLSX)
	r.Get("/export/products.csv", s.exportCSV)
	r.Post("/upload", s.upload)
	r.Get("/health", s.health)
}
