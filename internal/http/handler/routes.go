package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/swagger"

	"kerneltest/docs"
	"kerneltest/internal/http/view"
)

// Deps bundles everything the routes need.
type Deps struct {
	DB *sql.DB
	// Health lists extra readiness checks next to the database (object store).
	Health []Pinger
	UploadDeps
	Sessions *session.Store
	// UserHeader names the identity header trusted on /login.
	UserHeader  string
	CSRFEnabled bool
	// CookieSecure marks the CSRF cookie Secure.
	CookieSecure bool
}

const (
	// room for multipart framing and the other form fields
	bodySlack = 1 << 20
	// server body cap when uploads are unlimited
	unboundedBodyLimit = 1 << 30
)

// BodyLimit is the fiber BodyLimit for an upload cap of maxUpload bytes.
// Bodies up to twice the cap still reach the upload handlers and get their
// InvalidFile answer; larger ones are refused by fiber with 413.
// maxUpload <= 0 means no upload cap.
func BodyLimit(maxUpload int64) int {
	if maxUpload <= 0 || maxUpload > (unboundedBodyLimit-bodySlack)/2 {
		return unboundedBodyLimit
	}
	return int(2*maxUpload) + bodySlack
}

// NewSessionStore builds the cookie-keyed session store of the interactive path.
func NewSessionStore(cfg session.Config) *session.Store {
	if cfg.CookieSameSite == "" {
		cfg.CookieSameSite = fiber.CookieSameSiteLaxMode
	}
	cfg.CookieHTTPOnly = true
	return session.New(cfg)
}

func csrfGuard(d Deps) fiber.Handler {
	if !d.CSRFEnabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return csrf.New(csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "csrf_",
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   d.CookieSecure,
		CookieHTTPOnly: true,
		ContextKey:     CSRFContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return renderHTML(c, fiber.StatusForbidden,
				view.ErrorPage("Form expired", "The form could not be verified. Reload the page and try again."))
		},
	})
}

// swaggerUI serves the Swagger UI with host and scheme taken from the request,
// so the "Try it out" calls work behind a proxy.
func swaggerUI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Get(fiber.HeaderHost)
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/swagger/*", swaggerUI())

	app.Get("/health", HealthCheck(d.DB, d.Health...))
	app.Get("/healthz", LivenessProbe())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(uploadPath, fiber.StatusFound)
	})
	app.Get("/login", Login(d.Sessions, d.UserHeader))
	app.Get("/logout", Logout(d.Sessions))

	login := RequireLogin(d.Sessions)
	guard := csrfGuard(d)
	app.Get(uploadPath, login, guard, UploadForm(d.UploadDeps))
	app.Post(uploadPath, login, guard, UploadInteractive(d.UploadDeps))
	app.Post("/upload/anonymous", UploadAnonymous(d.UploadDeps))
	app.Post("/upload/autotest", UploadAutotest(d.UploadDeps))

	api := app.Group("/api")
	api.Get("/results", ListResults(d.Results))
	api.Get("/results/:id", GetResult(d.Results))
	api.Get("/results/:id/log", ResultLog(d.Results))
	api.Get("/results/:id/log-url", ResultLogURL(d.Results))
}
