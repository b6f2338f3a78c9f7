package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gatherly/gatherly/server/auth"
	"github.com/gatherly/gatherly/store"
)

// SignUpRequest is the signup request body.
type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// SignInRequest is the signin request body.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// TokenResponse carries a signed access token.
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

func userResponseOf(user *store.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
		Email:    user.Email,
		Nickname: user.Nickname,
	}
}

// SignUp registers a new user. The first registered user becomes the host.
func (s *APIV1Service) SignUp(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "username already taken")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	role := store.RoleUser
	hostRole := store.RoleHost
	hosts, err := s.Store.ListUsers(ctx, &store.FindUser{Role: &hostRole})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up users")
	}
	if len(hosts) == 0 {
		role = store.RoleHost
	}

	user, err := s.Store.CreateUser(ctx, &store.User{
		Username:     req.Username,
		Role:         role,
		Email:        req.Email,
		Nickname:     req.Nickname,
		PasswordHash: hash,
		RowStatus:    store.Normal,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}

	token, err := s.authenticator.SignToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign token")
	}
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, User: userResponseOf(user)})
}

// SignIn exchanges credentials for an access token.
func (s *APIV1Service) SignIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	user, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to look up user")
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if user.RowStatus == store.Archived {
		return echo.NewHTTPError(http.StatusForbidden, "user is archived")
	}

	token, err := s.authenticator.SignToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign token")
	}
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, User: userResponseOf(user)})
}

// GetCurrentUser returns the authenticated user.
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, userResponseOf(user))
}
