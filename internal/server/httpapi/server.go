// Package httpapi exposes the service layer over a JSON HTTP API. The
// handlers stay thin: they parse requests, call the services through
// narrow interfaces and translate sentinel errors to status codes.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pixkeep/pixkeep/internal/logging"
	"github.com/pixkeep/pixkeep/internal/server/identity"
	"github.com/pixkeep/pixkeep/internal/server/models"
)

// AccountAPI is the slice of the account service the handlers need.
type AccountAPI interface {
	SignUp(ctx context.Context, email, password, username string) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*identity.Session, error)
	UpdateUsername(ctx context.Context, accountID, username string) error
	ChangeEmail(ctx context.Context, accountID, newEmail string) error
	ChangePassword(ctx context.Context, accountID, newPassword string) error
	ConfirmEmailChange(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, accountID, confirmation string) error
}

// AssetAPI is the slice of the asset service the handlers need.
type AssetAPI interface {
	Create(ctx context.Context, ownerID, title string, data []byte, fileName, contentType string) (*models.Image, error)
	Delete(ctx context.Context, assetID, requesterID string) error
	List(ctx context.Context, ownerID, titleFilter string) ([]*models.Image, error)
}

type Server struct {
	accounts AccountAPI
	assets   AssetAPI
	secret   []byte
	logger   logging.Logger
	srv      *http.Server
}

func NewServer(addr string, secret []byte, accounts AccountAPI, assets AssetAPI,
	logger logging.Logger) *Server {
	s := &Server{
		accounts: accounts,
		assets:   assets,
		secret:   secret,
		logger:   logger.With("module", "httpapi"),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.Router()}
	return s
}

// Router builds the gin engine with CORS and all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.POST("/auth/signup", s.handleSignUp)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/confirm-email", s.handleConfirmEmail)

	authed := api.Group("")
	authed.Use(AuthRequired(s.secret))
	authed.POST("/auth/logout", s.handleLogout)
	authed.GET("/images", s.handleListImages)
	authed.POST("/images", s.handleUploadImage)
	authed.DELETE("/images/:id", s.handleDeleteImage)
	authed.PATCH("/account/username", s.handleUpdateUsername)
	authed.PATCH("/account/email", s.handleChangeEmail)
	authed.PATCH("/account/password", s.handleChangePassword)
	authed.DELETE("/account", s.handleDeleteAccount)

	return router
}

func (s *Server) Run() error {
	s.logger.Info(context.Background(), "http server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
