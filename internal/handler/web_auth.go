package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/jmlee-dev/studycafe-backend/internal/config"
	"github.com/jmlee-dev/studycafe-backend/internal/model"
	"github.com/jmlee-dev/studycafe-backend/internal/repository"
	"github.com/jmlee-dev/studycafe-backend/internal/settlement"
	"github.com/jmlee-dev/studycafe-backend/internal/utils"
)

// AuthHandler bundles dependencies for the web dashboard auth
// endpoints.  Refresh tokens are stored hashed and individually
// revocable; access tokens are short-lived JWTs.
type AuthHandler struct {
	Cfg     config.Config
	Members *repository.MemberRepo
	Tokens  *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, m *repository.MemberRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Members: m, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	PIN      *int   `json:"pin"`
}
type webLoginReq struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type memberPart struct {
	ID      uint64 `json:"id"`
	LoginID string `json:"login_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}
type authResp struct {
	Member  memberPart `json:"member"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// Signup: create a registered member and return tokens immediately.
// The kiosk PIN is set here because check-out requires it.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.LoginID = strings.ToLower(strings.TrimSpace(req.LoginID))
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = settlement.NormalizePhone(strings.TrimSpace(req.Phone))
	if req.LoginID == "" || req.Password == "" || req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login_id, password, name and phone required"})
	}
	if req.PIN == nil || *req.PIN < 0 || *req.PIN > 9999 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pin must be a 4-digit number"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Members.Create(ctx, req.LoginID, hash, req.Name, req.Phone, req.Email, *req.PIN)
	if err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "login_id or phone already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create member failed"})
	}

	return h.issuePair(c, http.StatusCreated, id, req.LoginID, req.Name, string(model.RoleUser))
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	m, status, errMsg := h.verifyLogin(c)
	if errMsg != "" {
		return c.JSON(status, echo.Map{"error": errMsg})
	}
	loginID := ""
	if m.LoginID != nil {
		loginID = *m.LoginID
	}
	return h.issuePair(c, http.StatusOK, m.ID, loginID, m.Name, string(m.Role))
}

// AdminLogin: same as Login but only the admin role may pass.  The
// admin console is a separate surface from the member dashboard.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	m, status, errMsg := h.verifyLogin(c)
	if errMsg != "" {
		return c.JSON(status, echo.Map{"error": errMsg})
	}
	if m.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin role required"})
	}
	loginID := ""
	if m.LoginID != nil {
		loginID = *m.LoginID
	}
	return h.issuePair(c, http.StatusOK, m.ID, loginID, m.Name, string(m.Role))
}

func (h *AuthHandler) verifyLogin(c echo.Context) (model.Member, int, string) {
	var req webLoginReq
	if err := c.Bind(&req); err != nil {
		return model.Member{}, http.StatusBadRequest, "invalid body"
	}
	req.LoginID = strings.ToLower(strings.TrimSpace(req.LoginID))
	if req.LoginID == "" || req.Password == "" {
		return model.Member{}, http.StatusBadRequest, "login_id and password required"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Members.GetByLoginID(ctx, req.LoginID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Member{}, http.StatusUnauthorized, "invalid credentials"
		}
		return model.Member{}, http.StatusInternalServerError, "query failed"
	}
	if !m.Role.CanUseDashboard() {
		return model.Member{}, http.StatusUnauthorized, "invalid credentials"
	}
	if m.PasswordHash == nil || !utils.VerifyPassword(*m.PasswordHash, req.Password) {
		return model.Member{}, http.StatusUnauthorized, "invalid credentials"
	}
	return m, 0, ""
}

func (h *AuthHandler) issuePair(c echo.Context, status int, memberID uint64, loginID, name, role string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, memberID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, memberID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		Member:  memberPart{ID: memberID, LoginID: loginID, Name: name, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Refresh: validate by hash, revoke the old token, issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	memberID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	m, err := h.Members.GetByID(ctx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load member failed"})
	}
	loginID := ""
	if m.LoginID != nil {
		loginID = *m.LoginID
	}
	return h.issuePair(c, http.StatusOK, m.ID, loginID, m.Name, string(m.Role))
}

// Logout revokes refresh tokens.  With a refresh_token in the body,
// that single session ends; with only a valid bearer token, every
// session of the member ends.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
	}

	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token or bearer token required"})
	}
	tok, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !tok.Valid {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
	}
	if err := h.Tokens.RevokeAllForMember(ctx, uint64(sub)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
}
