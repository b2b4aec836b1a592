package server

import (
	"log/slog"
	"net/http"
	"time"

	"boda-web/internal/admin"
	"boda-web/internal/backup"
	"boda-web/internal/handler"
	"boda-web/internal/kv"
	"boda-web/internal/metric"
	"boda-web/internal/middleware"
	"boda-web/internal/photos"
	"boda-web/internal/rsvp"
	"boda-web/internal/store"
	"boda-web/internal/websocket"
)

// Config is the server-level subset of application configuration.
type Config struct {
	AllowedOrigin  string
	AdminKey       string
	AdminKeyBcrypt string
	ImportMaxBytes int64
	Debug          bool
	Backup         backup.Config
}

type Server struct {
	cfg Config
	hub *websocket.Hub

	sessionStore *admin.SessionStore
	rateLimiter  *middleware.RateLimiter

	authH   *handler.AuthHandler
	rsvpH   *handler.RSVPHandler
	groupH  *handler.GroupHandler
	configH *handler.ConfigHandler
	photoH  *handler.PhotoHandler
	backupH *handler.BackupHandler

	logger *slog.Logger
}

// New wires the whole application around the injected key-value store and
// group store. The group store arrives already constructed in the right mode;
// nothing below this point knows which layout is active.
func New(cfg Config, kvStore kv.Store, groups store.GroupStore, logger *slog.Logger) *Server {
	hub := websocket.NewHub(logger.With("component", "websocket"))

	cfgStore := store.NewConfigStore(kvStore)
	sessionStore := admin.NewSessionStore(kvStore, cfg.AdminKey, cfg.AdminKeyBcrypt)

	rsvpSvc := rsvp.NewService(groups, logger.With("component", "rsvp"))
	photoSvc := photos.NewService(cfgStore)
	backupMgr := backup.NewManager(cfg.Backup, groups, cfgStore, kvStore, logger.With("component", "backup"))

	return &Server{
		cfg:          cfg,
		hub:          hub,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		authH:        handler.NewAuthHandler(sessionStore, logger.With("component", "auth"), cfg.Debug),
		rsvpH:        handler.NewRSVPHandler(rsvpSvc, logger.With("component", "rsvp"), cfg.Debug),
		groupH:       handler.NewGroupHandler(groups, hub, logger.With("component", "groups"), cfg.Debug),
		configH:      handler.NewConfigHandler(cfgStore, hub, logger.With("component", "config"), cfg.Debug),
		photoH:       handler.NewPhotoHandler(photoSvc, hub, logger.With("component", "photos"), cfg.Debug),
		backupH:      handler.NewBackupHandler(backupMgr, hub, cfg.ImportMaxBytes, logger.With("component", "backup"), cfg.Debug),
		logger:       logger,
	}
}

// Hub exposes the websocket hub, for shutdown accounting.
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes: guest RSVP and the table photo game.
	outerMux.HandleFunc("GET /api/rsvp/{token}", s.rsvpH.Get)
	outerMux.HandleFunc("PATCH /api/rsvp/{token}", s.rsvpH.Patch)
	outerMux.HandleFunc("GET /api/tables/{id}/race", s.photoH.GetRace)
	outerMux.HandleFunc("POST /api/tables/{id}/race/photos", s.photoH.SubmitPhoto)

	outerMux.Handle("POST /api/admin/login", s.rateLimitedLogin())
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metric.Handler())

	// Admin routes behind session auth.
	adminMux := http.NewServeMux()
	s.registerAdminRoutes(adminMux)

	authMW := middleware.RequireAdmin(s.sessionStore, s.logger.With("component", "auth"))
	outerMux.Handle("/api/admin/", authMW(adminMux))

	chain := middleware.CORS(s.cfg.AllowedOrigin)(outerMux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(chain)
}

func (s *Server) registerAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admin/logout", s.authH.Logout)

	mux.HandleFunc("GET /api/admin/groups", s.groupH.List)
	mux.HandleFunc("POST /api/admin/groups", s.groupH.Create)
	mux.HandleFunc("GET /api/admin/groups/{id}", s.groupH.Get)
	mux.HandleFunc("PUT /api/admin/groups/{id}", s.groupH.Update)
	mux.HandleFunc("DELETE /api/admin/groups/{id}", s.groupH.Delete)

	mux.HandleFunc("GET /api/admin/tables", s.configH.ListTables)
	mux.HandleFunc("PUT /api/admin/tables", s.configH.SaveTables)
	mux.HandleFunc("GET /api/admin/buses", s.configH.ListBuses)
	mux.HandleFunc("PUT /api/admin/buses", s.configH.SaveBuses)

	mux.HandleFunc("PUT /api/admin/tables/{id}/race/photos/{photo_id}", s.photoH.ValidatePhoto)

	mux.HandleFunc("GET /api/admin/export", s.backupH.Export)
	mux.HandleFunc("POST /api/admin/import", s.backupH.Import)
	mux.HandleFunc("POST /api/admin/migrate", s.backupH.Migrate)

	mux.Handle("GET /api/admin/ws", websocket.Handler(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) rateLimitedLogin() http.Handler {
	keyFunc := middleware.RealIP
	return middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)(http.HandlerFunc(s.authH.Login))
}
