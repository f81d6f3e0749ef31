package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/vereda-tours/internal/domain"
	"github.com/pkordes/vereda-tours/internal/imagestore"
	"github.com/pkordes/vereda-tours/internal/middleware"
	"github.com/pkordes/vereda-tours/spec"
)

// RouterOptions configures the middleware stack around the handlers.
// Zero values disable the corresponding feature.
type RouterOptions struct {
	Log          *slog.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
	// Tenant is the expected tenant header on /auth routes.
	Tenant string
	// Auth verifies bearer tokens. Without it protected routes answer 401.
	Auth middleware.Authenticator
	// LoginLimiter throttles POST /auth/login per client IP.
	LoginLimiter *middleware.RateLimiter
	// UploadDir is served read-only under imagestore.PublicPrefix.
	UploadDir string
}

// NewRouter wires every route onto a chi router.
// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
func NewRouter(s *Server, o RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if o.Log != nil {
		r.Use(middleware.NewSlogLogger(o.Log))
	}
	r.Use(chimiddleware.Recoverer)
	if len(o.CORSOrigins) > 0 {
		r.Use(middleware.NewCORSHandler(o.CORSOrigins))
	}
	if o.MaxBodyBytes > 0 {
		r.Use(middleware.NewMaxBodySizeHandler(o.MaxBodyBytes))
	}

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	if o.UploadDir != "" {
		r.Handle(imagestore.PublicPrefix+"/*",
			http.StripPrefix(imagestore.PublicPrefix, http.FileServer(http.Dir(o.UploadDir))))
	}

	authn := func(r chi.Router) chi.Router {
		if o.Auth == nil {
			return r
		}
		return r.With(middleware.Authenticate(o.Auth))
	}
	admin := func(r chi.Router) chi.Router {
		return authn(r).With(middleware.RequireRole(domain.RoleAdministrator))
	}

	if s.Auth != nil || s.Users != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RequireTenant(o.Tenant))
			if s.Auth != nil {
				login := http.Handler(http.HandlerFunc(s.Login))
				if o.LoginLimiter != nil {
					login = o.LoginLimiter.Limit(login)
				}
				r.Method(http.MethodPost, "/login", login)
				r.Post("/register", s.Register)
			}
			if s.Users != nil {
				authn(r).Get("/profile", s.GetProfile)
				authn(r).Put("/profile", s.UpdateProfile)
			}
		})
	}

	if s.Plans != nil {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.ListPlans)
			r.Get("/{id}", s.GetPlan)
			admin(r).Post("/", s.CreatePlan)
			admin(r).Put("/{id}", s.UpdatePlan)
			admin(r).Delete("/{id}", s.DeletePlan)
		})
	}

	if s.Guides != nil {
		r.Route("/guides", func(r chi.Router) {
			r.Get("/", s.ListGuides)
			r.Get("/{id}", s.GetGuide)
			r.Get("/{id}/availability", s.GetGuideAvailability)
			admin(r).Post("/", s.CreateGuide)
			admin(r).Put("/{id}", s.UpdateGuide)
			admin(r).Delete("/{id}", s.DeleteGuide)
			admin(r).Put("/{id}/availability", s.UpdateGuideAvailability)
		})
	}

	if s.Users != nil {
		r.Route("/users", func(r chi.Router) {
			a := admin(r)
			a.Get("/", s.ListUsers)
			a.Post("/", s.CreateUser)
			a.Get("/{id}", s.GetUser)
			a.Put("/{id}", s.UpdateUser)
			a.Delete("/{id}", s.DeleteUser)
		})
	}

	if s.Reservations != nil {
		r.Route("/reservations", func(r chi.Router) {
			u := authn(r)
			u.Post("/quote", s.QuoteReservation)
			admin(r).Get("/", s.ListReservations)
			admin(r).Get("/export", s.ExportReservations)
			u.Get("/mine", s.ListMyReservations)
			u.Post("/", s.CreateReservation)
			u.Get("/{id}", s.GetReservation)
			u.Put("/{id}", s.UpdateReservation)
			u.Delete("/{id}", s.CancelReservation)
			u.Post("/{id}/cancel", s.CancelReservation)
			u.Put("/{id}/payment", s.SelectPaymentMethod)
			u.Get("/{id}/receipt", s.GetReservationReceipt)
		})
	}

	if s.Selection != nil {
		r.Get("/selection", s.GetSelection)
		r.Put("/selection", s.SelectPlan)
		r.Delete("/selection", s.ClearSelection)
	}

	return r
}
