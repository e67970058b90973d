package httpadapter

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// Services are the inbound ports served by the router.
type Services struct {
	Accounts      ports.AccountService
	Businesses    ports.BusinessService
	Compliance    ports.ComplianceService
	Employees     ports.EmployeeService
	Insights      ports.InsightsService
	Notifications ports.NotificationService
	Subscriptions ports.SubscriptionService
	Admin         ports.AdminService
	Library       ports.DocumentLibrary
	Catalog       ports.SectorCatalog
}

// HTTPMetrics instruments requests and serves the scrape endpoint.
type HTTPMetrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Options struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	QueueTimeout   time.Duration
	Metrics        HTTPMetrics
}

type Router struct {
	svc      Services
	opts     Options
	validate *validator.Validate
}

func NewRouter(svc Services, opts Options) *Router {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &Router{svc: svc, opts: opts, validate: validate}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware, accessLogMiddleware)
	if rt.opts.Metrics != nil {
		r.Use(rt.opts.Metrics.Middleware)
	}
	r.Use(cors.Handler(corsOptions(rt.opts.CORSOrigins)))

	r.Get("/healthz", rt.healthz)
	if rt.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.opts.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return rateLimitMiddleware(backpressureMiddleware(next, rt.opts.MaxInFlight, rt.opts.QueueTimeout), rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
		})

		api.Get("/", rt.root)
		api.Post("/auth/signup", rt.signup)
		api.Post("/auth/login", rt.login)
		api.Post("/admin/login", rt.adminLogin)
		api.Post("/webhook/stripe", rt.stripeWebhook)
		api.Get("/subscription/plans", rt.listPlans)
		api.Get("/reference/sectors", rt.referenceSectors)
		api.Get("/reference/nations", rt.referenceNations)
		api.Get("/reference/business-sizes", rt.referenceBusinessSizes)
		api.Get("/reference/categories", rt.referenceCategories)

		api.Group(func(pr chi.Router) {
			pr.Use(authMiddleware(rt.svc.Accounts))

			pr.Get("/auth/me", rt.me)

			pr.Post("/business", rt.createBusiness)
			pr.Get("/business", rt.getBusiness)
			pr.Put("/business", rt.updateBusiness)

			pr.Get("/compliance/score", rt.complianceScore)
			pr.Get("/compliance/items", rt.listItems)
			pr.Get("/compliance/items/{itemID}", rt.getItem)
			pr.Put("/compliance/items/{itemID}", rt.updateItem)
			pr.Post("/compliance/items/{itemID}/acknowledge", rt.acknowledgeItem)
			pr.Post("/compliance/items/{itemID}/file", rt.uploadItemFile)
			pr.Get("/compliance/items/{itemID}/file", rt.itemFileURL)
			pr.Get("/compliance/categories", rt.complianceCategories)
			pr.Get("/compliance/types", rt.complianceTypes)

			pr.Get("/employees", rt.listEmployees)
			pr.Post("/employees", rt.createEmployee)
			pr.Get("/employees/compliance/overview", rt.employeeOverview)
			pr.Get("/employees/requirements/types", rt.requirementTypes)
			pr.Get("/employees/{employeeID}", rt.getEmployee)
			pr.Put("/employees/{employeeID}", rt.updateEmployee)
			pr.Delete("/employees/{employeeID}", rt.deleteEmployee)
			pr.Get("/employees/{employeeID}/requirements", rt.listRequirements)
			pr.Post("/employees/{employeeID}/requirements", rt.addRequirement)
			pr.Put("/employees/{employeeID}/requirements/{requirementID}", rt.updateRequirement)

			pr.Get("/notifications", rt.listNotifications)
			pr.Put("/notifications/{notificationID}/read", rt.markNotificationRead)
			pr.Post("/notifications/mark-all-read", rt.markAllNotificationsRead)

			pr.Post("/subscription/checkout", rt.checkout)
			pr.Get("/subscription/status/{sessionID}", rt.checkoutStatus)

			pr.Get("/dashboard/stats", rt.dashboardStats)

			pr.Group(func(ar chi.Router) {
				ar.Use(requireAdmin)
				ar.Get("/admin/me", rt.me)
				ar.Get("/admin/users", rt.adminUsers)
				ar.Get("/admin/businesses", rt.adminBusinesses)
				ar.Get("/admin/stats", rt.adminStats)
				ar.Get("/admin/export/businesses.xlsx", rt.adminExport)
				ar.Post("/admin/documents", rt.uploadLibraryDocument)
				ar.Get("/admin/documents", rt.listLibraryDocuments)
				ar.Get("/admin/documents/{documentID}/download", rt.libraryDownloadURL)
				ar.Delete("/admin/documents/{documentID}", rt.deleteLibraryDocument)
			})
		})
	})
	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	wildcard := false
	for _, origin := range origins {
		if origin == "*" {
			wildcard = true
		}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "SimplyComply API", "status": "running"})
}
