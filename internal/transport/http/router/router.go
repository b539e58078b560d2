package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/account-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	CreateAdmin(w http.ResponseWriter, r *http.Request)

	ListAccounts(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	GetAccount(w http.ResponseWriter, r *http.Request)
	ModifyProfile(w http.ResponseWriter, r *http.Request)
	UploadProfileImage(w http.ResponseWriter, r *http.Request)
	DeleteAccount(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health   HealthHandler
	Accounts AccountHandler

	AuthMW         func(http.Handler) http.Handler
	OptionalAuthMW func(http.Handler) http.Handler
	AdminMW        func(http.Handler) http.Handler

	// Optional per-route limits; nil means unlimited.
	SignupRL func(http.Handler) http.Handler
	LoginRL  func(http.Handler) http.Handler
	AdminRL  func(http.Handler) http.Handler

	// Optional
	Metrics    http.Handler
	UploadsURL string // path prefix, e.g. /uploads
	UploadsDir string // served only when set
	Production bool
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("nil Accounts handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.OptionalAuthMW == nil {
		return nil, fmt.Errorf("nil OptionalAuth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(deps.Production))
	r.Use(middleware.Metrics)
	r.Use(middleware.AccessLog)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	// --- Public ---
	r.With(orNoop(deps.SignupRL)).Post("/signup", deps.Accounts.Signup)
	r.With(orNoop(deps.LoginRL)).Post("/login", deps.Accounts.Login)

	// Admin creation: the service applies the configured policy to the caller,
	// who may be anonymous.
	r.With(deps.OptionalAuthMW, orNoop(deps.AdminRL)).Post("/admins", deps.Accounts.CreateAdmin)

	// --- Authenticated ---
	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMW)

		r.Get("/me", deps.Accounts.Me)
		r.With(deps.AdminMW).Get("/users", deps.Accounts.ListAccounts)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", deps.Accounts.GetAccount)
			r.Patch("/", deps.Accounts.ModifyProfile)
			r.Delete("/", deps.Accounts.DeleteAccount)
			r.Post("/profile-image", deps.Accounts.UploadProfileImage)
		})
	})

	if deps.UploadsDir != "" {
		prefix := "/" + strings.Trim(deps.UploadsURL, "/")
		if prefix == "/" {
			prefix = "/uploads"
		}
		fs := http.StripPrefix(prefix, noListing(http.FileServer(http.Dir(deps.UploadsDir))))
		r.Method(http.MethodGet, prefix+"/*", fs)
		r.Method(http.MethodHead, prefix+"/*", fs)
	}

	return r, nil
}

func orNoop(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

// noListing hides directory indexes and dot files (in-flight temp uploads).
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "" || strings.HasSuffix(p, "/") || strings.Contains(p, "/.") || strings.HasPrefix(p, ".") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
