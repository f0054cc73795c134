package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/server/models"
	"github.com/pixkeep/pixkeep/internal/server/services"
)

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type imageResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"file_url"`
	FileSize  int64     `json:"file_size"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

func toImageResponse(img *models.Image) imageResponse {
	return imageResponse{
		ID:        img.ID,
		Title:     img.Title,
		FileURL:   img.FileURL,
		FileSize:  img.FileSize,
		FileType:  img.FileType,
		CreatedAt: img.CreatedAt,
	}
}

// writeError maps service sentinels to HTTP statuses. Unrecognized errors
// become an opaque 500 so internals stay off the wire.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrConfirmationMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation phrase does not match"})
	case errors.Is(err, common.ErrIdentifierNotFound),
		errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, common.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrAlreadyDeleted):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
	case errors.Is(err, common.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.accounts.SignUp(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := s.accounts.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      session.Token,
		"account_id": session.AccountID,
		"expires_at": session.ExpiresAt,
	})
}

func (s *Server) handleConfirmEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.accounts.ConfirmEmailChange(c.Request.Context(), req.Token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "email confirmed"})
}

// handleLogout acknowledges a logout. Sessions are stateless JWTs; the
// token itself is discarded by the client.
func (s *Server) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) handleListImages(c *gin.Context) {
	images, err := s.assets.List(c.Request.Context(), currentUserID(c), c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]imageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, toImageResponse(img))
	}
	c.JSON(http.StatusOK, gin.H{"images": out})
}

// uploadBodySlack is the allowance for multipart framing and non-file
// fields on top of the file size cap.
const uploadBodySlack = 64 << 10

func (s *Server) handleUploadImage(c *gin.Context) {
	// Cap the request body before multipart parsing buffers it, so an
	// oversized upload never gets fully read into memory or spooled to
	// disk only to be rejected downstream.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadSize+uploadBodySlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > services.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	title := c.PostForm("title")

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}

	img, err := s.assets.Create(c.Request.Context(), currentUserID(c), title,
		data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toImageResponse(img))
}

func (s *Server) handleDeleteImage(c *gin.Context) {
	if err := s.assets.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleUpdateUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.accounts.UpdateUsername(c.Request.Context(), currentUserID(c), req.Username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "username updated"})
}

func (s *Server) handleChangeEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.accounts.ChangeEmail(c.Request.Context(), currentUserID(c), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmation sent to new address"})
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.accounts.ChangePassword(c.Request.Context(), currentUserID(c), req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

func (s *Server) handleDeleteAccount(c *gin.Context) {
	var req struct {
		Confirmation string `json:"confirmation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.accounts.DeleteAccount(c.Request.Context(), currentUserID(c), req.Confirmation); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "account deleted"})
}
