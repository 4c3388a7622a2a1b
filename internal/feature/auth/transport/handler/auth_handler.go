// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/auth/domain/entity"
	"task_backend/internal/feature/auth/transport/http/dto"
	"task_backend/internal/feature/auth/usecase"
	jwtmw "task_backend/internal/platform/jwt"
)

// CookieName はセッショントークンを運ぶクッキーの名前です。
const CookieName = "session"

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、セッショントークンを発行します。
	Register(ctx context.Context, in usecase.RegisterInput) (string, *entity.User, error)
	// Login はユーザーを認証し、成功時にセッショントークンを返します。
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// セッショントークンはHttpOnly・SameSite=Laxのクッキーで運ばれます。
type AuthHandler struct {
	auth         AuthUsecase
	cookieMaxAge int
	secureCookie bool
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// cookieMaxAgeは秒単位で、トークンの有効期限と一致させます。
func NewAuthHandler(auth AuthUsecase, cookieMaxAge int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// setSessionCookie sets the HTTP-only, same-site session cookie.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", h.secureCookie, true)
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メールアドレスまたはユーザー名の重複時は409を返却
// - 成功時はセッションクッキーを設定して201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "invalid request"})
		return
	}

	token, user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: err.Error()})
		case errors.Is(err, usecase.ErrEmailAlreadyExists), errors.Is(err, usecase.ErrUsernameAlreadyExists):
			c.JSON(http.StatusConflict, dto.ErrorResp{Error: err.Error()})
		default:
			slog.Error("register failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, dto.ErrorResp{Error: "registration failed"})
		}
		return
	}

	h.setSessionCookie(c, token, h.cookieMaxAge)
	slog.Info("user registered", "username", user.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthResp{User: dto.NewUserResp(user)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却（メール未登録とパスワード不一致を区別しない）
// - 成功時はセッションクッキーを設定して200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResp{Error: "invalid request"})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "invalid email or password"})
			return
		}
		slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.ErrorResp{Error: "login failed"})
		return
	}

	h.setSessionCookie(c, token, h.cookieMaxAge)
	slog.Info("user login successful", "username", user.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthResp{User: dto.NewUserResp(user)})
}

// Logout はセッションクッキーを破棄します。
// サーバー側のトークン失効リストは持たないため、状態変更はありません。
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, dto.MessageResp{Message: "logged out"})
}

// Me は認証済みの呼び出し元ユーザーのプロフィールを返します。
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResp{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResp(user))
}
