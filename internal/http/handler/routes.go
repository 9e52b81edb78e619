package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are what the routes are served from. DB, Login and Gatherer are optional.
type Deps struct {
	DB       *sql.DB
	Sessions *SessionStore
	Login    LoginFlow
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", Liveness())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	pending := newPendingLogins()
	auth := app.Group("/auth")
	auth.Get("/session", SessionStatus(d.Sessions))
	auth.Get("/login", BeginLogin(d.Sessions, d.Login, pending))
	auth.Get("/callback", LoginCallback(d.Sessions, d.Login, pending))
	auth.Post("/signin", SignIn(d.Sessions))
	auth.Post("/signout", SignOut(d.Sessions))

	api := app.Group("/api", d.Sessions.RequireCaller())
	api.Get("/documents", forCaller(ListDocuments))
	api.Post("/documents", forCaller(UploadDocument))
	api.Get("/documents/:id/content", forCaller(DocumentContent))
	api.Post("/documents/:id/summarize", forCaller(Summarize))
	api.Post("/documents/:id/explain", forCaller(Explain))
	api.Post("/documents/:id/quiz", forCaller(Quiz))
	api.Post("/documents/:id/ask", forCaller(Ask))
	api.Get("/documents/:id/discussions", forCaller(ListDiscussions))
	api.Post("/documents/:id/discussions", forCaller(PostDiscussion))
	api.Post("/speech", forCaller(Speak))
	api.Get("/activity", forCaller(ListActivity))

	audio := app.Group("/audio", d.Sessions.RequireCaller())
	audio.Get("/*", forCaller(ServeClip))
	audio.Delete("/*", forCaller(ReleaseClip))
}
