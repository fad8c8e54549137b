package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-review-api/config"
	"task-review-api/models"
	"task-review-api/utils"
)

const resetTokenTTL = 10 * time.Minute

// Seams for tests: token generation and mail dispatch are swappable, and the
// persistence calls go through a small repository interface.
var (
	resetTokenGenerator = func() (string, error) {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		return hex.EncodeToString(buf), nil
	}

	sendMailFunc = config.SendMail

	passwordResetRepo passwordResetStore = &gormPasswordResetStore{}
)

type passwordResetStore interface {
	FindUserByEmail(email string) (*models.User, error)
	RevokeResetTokens(userID uuid.UUID, now time.Time) error
	CreateResetToken(token *models.PasswordResetToken) error
	FindActiveResetTokens(now time.Time) ([]models.PasswordResetToken, error)
	UpdateUserPassword(userID uuid.UUID, hashedPassword string) error
	RevokeToken(tokenID uuid.UUID, now time.Time) error
}

type gormPasswordResetStore struct{}

func (s *gormPasswordResetStore) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormPasswordResetStore) RevokeResetTokens(userID uuid.UUID, now time.Time) error {
	return config.DB.Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"expires_at": now,
		}).Error
}

func (s *gormPasswordResetStore) CreateResetToken(token *models.PasswordResetToken) error {
	return config.DB.Create(token).Error
}

func (s *gormPasswordResetStore) FindActiveResetTokens(now time.Time) ([]models.PasswordResetToken, error) {
	var tokens []models.PasswordResetToken
	err := config.DB.Where("revoked = ? AND expires_at > ?", false, now).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}

func (s *gormPasswordResetStore) UpdateUserPassword(userID uuid.UUID, hashedPassword string) error {
	return config.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hashedPassword).Error
}

func (s *gormPasswordResetStore) RevokeToken(tokenID uuid.UUID, now time.Time) error {
	return config.DB.Model(&models.PasswordResetToken{}).
		Where("id = ?", tokenID).
		Updates(map[string]interface{}{
			"revoked":    true,
			"expires_at": now,
		}).Error
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ForgotPassword issues a single-use reset token and emails a reset link.
// The response is identical whether or not the email exists, so the endpoint
// can't be used for account enumeration.
// POST /api/v1/forgot-password
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Email = utils.SanitizeInput(req.Email)
	if !utils.ValidateEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	sent := gin.H{"message": "If the email exists, a reset link has been sent."}

	user, err := passwordResetRepo.FindUserByEmail(req.Email)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
			return
		}
		c.JSON(http.StatusOK, sent)
		return
	}

	rawToken, err := resetTokenGenerator()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
		return
	}

	// Only a bcrypt hash of the token is stored; the raw value goes out in
	// the email and is never recoverable from the database.
	hashedToken, err := utils.HashPassword(rawToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to secure reset token"})
		return
	}

	now := time.Now()
	if err := passwordResetRepo.RevokeResetTokens(user.ID, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare reset token"})
		return
	}

	token := models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashedToken,
		ExpiresAt: now.Add(resetTokenTTL),
	}
	if err := passwordResetRepo.CreateResetToken(&token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store reset token"})
		return
	}

	if err := sendPasswordResetEmail(user, rawToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email"})
		return
	}

	c.JSON(http.StatusOK, sent)
}

// ResetPassword exchanges a valid reset token for a new password and revokes
// every outstanding token for that account.
// POST /api/v1/reset-password
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Token = utils.SanitizeInput(req.Token)

	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}
	if ok, msg := utils.ValidatePassword(req.NewPassword); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	now := time.Now()
	tokenRecord, err := findActiveResetToken(req.Token, now)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	if err := passwordResetRepo.UpdateUserPassword(tokenRecord.UserID, hash); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	if err := passwordResetRepo.RevokeToken(tokenRecord.ID, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}
	if err := passwordResetRepo.RevokeResetTokens(tokenRecord.UserID, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize reset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// findActiveResetToken matches the raw token against stored bcrypt hashes.
// Tokens can't be looked up by value since only hashes are persisted.
func findActiveResetToken(rawToken string, now time.Time) (*models.PasswordResetToken, error) {
	tokens, err := passwordResetRepo.FindActiveResetTokens(now)
	if err != nil {
		return nil, err
	}

	for i := range tokens {
		if utils.CheckPasswordHash(rawToken, tokens[i].TokenHash) {
			return &tokens[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func sendPasswordResetEmail(user *models.User, rawToken string) error {
	resetURL, err := buildResetURL(rawToken)
	if err != nil {
		return err
	}

	subject := "Password reset instructions"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received a request to reset your password. "+
			"<a href=\"%s\">Click here to choose a new one</a>. "+
			"The link expires in %d minutes.</p>"+
			"<p>If you didn't request this, you can ignore this email.</p>",
		user.Name, resetURL, int(resetTokenTTL.Minutes()),
	)
	return sendMailFunc([]string{user.Email}, subject, body)
}

func buildResetURL(token string) (string, error) {
	baseURL := strings.TrimSpace(os.Getenv("APP_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/reset-password"
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
