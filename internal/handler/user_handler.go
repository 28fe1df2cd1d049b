package handler

import (
	"net/http"

	"carwash/internal/config"
	"carwash/internal/middleware"
	"carwash/internal/model"
	"carwash/internal/service"
	"carwash/pkg/pagination"
	"carwash/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	guard       *middleware.Guard
	auth        config.AuthConfig
}

// NewUserHandler sets up the routing dependencies for auth and user endpoints
func NewUserHandler(userService service.UserService, guard *middleware.Guard, auth config.AuthConfig) *UserHandler {
	return &UserHandler{userService: userService, guard: guard, auth: auth}
}

// RegisterPublicRoutes binds the unauthenticated auth endpoints.
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", h.Logout)
	}
}

// RegisterRoutes binds the endpoints that need a valid access token.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", h.GetMe)

	users := router.Group("/users")
	{
		users.GET("", h.guard.RequirePermission(model.PermissionName(model.ModuleUsers, model.ActionView)), h.ListUsers)
		users.GET("/:id", h.guard.RequirePermission(model.PermissionName(model.ModuleUsers, model.ActionView)), h.GetUserByID)
		users.POST("", h.guard.RequirePermission(model.PermissionName(model.ModuleUsers, model.ActionCreate)), h.CreateUser)
		users.PUT("/:id", h.guard.RequirePermission(model.PermissionName(model.ModuleUsers, model.ActionUpdate)), h.UpdateUser)
		users.DELETE("/:id", h.guard.RequirePermission(model.PermissionName(model.ModuleUsers, model.ActionDelete)), h.DeleteUser)
	}
}

// CreateUser handles POST /users requests mapping
// @Summary      Create a new user
// @Description  Creates a new user with an existing role, hashing the password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	created(c, user)
}

// Login handles POST /auth/login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by username and password, returning access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, h.auth, tokenRes.AccessToken, tokenRes.RefreshToken)
	ok(c, tokenRes)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshTokenFrom prefers the cookie and falls back to a JSON body.
func refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	return req.RefreshToken
}

// RefreshToken rotates the refresh token and issues a new access token
// @Summary      Refresh access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.TokenResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	tokenRes, err := h.userService.RefreshToken(c.Request.Context(), refreshTokenFrom(c))
	if err != nil {
		middleware.ClearTokenCookies(c, h.auth)
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, h.auth, tokenRes.AccessToken, tokenRes.RefreshToken)
	ok(c, tokenRes)
}

// Logout revokes the refresh token and clears auth cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.Request.Context(), refreshTokenFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	middleware.ClearTokenCookies(c, h.auth)
	ok(c, gin.H{"message": "Logged out"})
}

// GetMe returns the caller with the permission names granted to their role
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.userService.Me(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, me)
}

// ListUsers returns a page of users
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Param        search  query  string  false  "Username or display name"
// @Success      200  {object}  response.Response{data=[]service.UserResponse}
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), p.Page, p.Limit, p.Search)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, users, p.Page, p.Limit, total))
}

// GetUserByID handles GET /users/:id
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, user)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, user)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{"message": "User deleted successfully"})
}
