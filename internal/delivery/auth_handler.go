package delivery

import (
	"net/http"

	"grouporder/internal/domain"
	"grouporder/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.AuthUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc domain.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) RegisterPublicRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/auth/logout", h.Logout)
	router.GET("/me", h.Me)
	router.GET("/users", h.ListUsers)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, h.log, &req, "register") {
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		FailWithError(c, h.log, "Failed to register user", err)
		return
	}

	h.log.Infof("User registered: ID %s", user.ID)
	SuccessResponse(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, h.log, &req, "login") {
		return
	}

	token, user, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		FailWithError(c, h.log, "Invalid email or password", err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.useCase.Logout(c.Request.Context(), middleware.Token(c)); err != nil {
		FailWithError(c, h.log, "Failed to log out", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.useCase.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve current user", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.useCase.ListUsers(c.Request.Context())
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve users", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}
