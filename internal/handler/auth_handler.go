package handler

import (
	"fmt"
	"net/http"
	"time"

	"anoa.com/studentrecords/internal/service"
	"anoa.com/studentrecords/pkg/apperror"
	"anoa.com/studentrecords/pkg/response"
	"anoa.com/studentrecords/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type AuthHandler struct {
	authService service.AuthService
	rdb         *redis.Client
	loginLimit  time.Duration
}

func NewAuthHandler(authService service.AuthService, rdb *redis.Client, loginLimit time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		rdb:         rdb,
		loginLimit:  loginLimit,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), h.rdb, c.ClientIP(), "login", h.loginLimit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !allowed {
		ttl, _ := service.GetRateLimitTTL(c.Request.Context(), h.rdb, c.ClientIP(), "login")
		response.ResponseError(c, fmt.Errorf("retry in %s: %w", ttl.Round(time.Second), apperror.ErrRateLimited))
		return
	}

	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var input service.CreateAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.authService.CreateAdmin(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
