// Package httpapi exposes the note, account and image services over a JSON
// REST API. Routing uses gorilla/mux; authentication is a Bearer JWT checked
// by middleware on every route outside /auth.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pradeep-dev/papertrail/internal/logging"
	"github.com/pradeep-dev/papertrail/internal/server/models"
	"github.com/pradeep-dev/papertrail/internal/server/services"
)

// UserService is the slice of the account service the API consumes.
type UserService interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// NoteService is the slice of the note service the API consumes.
type NoteService interface {
	CreateNote(ctx context.Context, callerID int64, title string, content map[string]any) (*models.Note, error)
	GetNote(ctx context.Context, callerID, noteID int64) (*models.Note, error)
	ListOwnedNotes(ctx context.Context, callerID int64) ([]*models.Note, error)
	ListSharedNotes(ctx context.Context, callerID int64) ([]*models.Note, error)
	UpdateNote(ctx context.Context, callerID, noteID int64, title string, content map[string]any) (*models.Note, error)
	ShareNote(ctx context.Context, callerID, noteID int64, targetEmail string, level models.PermissionLevel) (*models.NotePermission, error)
	RevokePermission(ctx context.Context, callerID, noteID, targetUserID int64) error
	DeleteNote(ctx context.Context, callerID, noteID int64) error
	ListPermissions(ctx context.Context, callerID, noteID int64) ([]*models.NotePermission, error)
}

// ImageService is the slice of the image service the API consumes.
type ImageService interface {
	Upload(ctx context.Context, callerID int64, data []byte, filename, contentType string) (*services.ImageUpload, error)
	Delete(ctx context.Context, callerID int64, key string) error
	URL(ctx context.Context, key string) (string, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	users     UserService
	notes     NoteService
	images    ImageService
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, us UserService, ns NoteService, is ImageService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		notes:     ns,
		images:    is,
		jwtSecret: []byte(secretKey),
	}
}

// Router builds the full route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/notes", s.handleCreateNote).Methods(http.MethodPost)
	api.HandleFunc("/notes/my", s.handleListOwnedNotes).Methods(http.MethodGet)
	api.HandleFunc("/notes/shared", s.handleListSharedNotes).Methods(http.MethodGet)
	api.HandleFunc("/notes/{noteId}", s.handleGetNote).Methods(http.MethodGet)
	api.HandleFunc("/notes/{noteId}", s.handleUpdateNote).Methods(http.MethodPut)
	api.HandleFunc("/notes/{noteId}", s.handleDeleteNote).Methods(http.MethodDelete)
	api.HandleFunc("/notes/{noteId}/share", s.handleShareNote).Methods(http.MethodPost)
	api.HandleFunc("/notes/{noteId}/permissions", s.handleListPermissions).Methods(http.MethodGet)
	api.HandleFunc("/notes/{noteId}/permissions/{userId}", s.handleRevokePermission).Methods(http.MethodDelete)

	api.HandleFunc("/api/images/upload", s.handleUploadImage).Methods(http.MethodPost)
	api.HandleFunc("/api/images", s.handleDeleteImage).Methods(http.MethodDelete)
	api.HandleFunc("/api/images/url", s.handleImageURL).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
