package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
	"storefront/internal/validation"

	"github.com/gin-gonic/gin"
)

type authResponse struct {
	User   *domain.User `json:"user"`
	Tokens *auth.Tokens `json:"tokens,omitempty"`
}

func (h *handlers) signup(c *gin.Context) {
	var req validation.SignupRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	u, err := h.deps.AuthSvc.Signup(c.Request.Context(), auth.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.writeError(c, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: u})
}

func (h *handlers) signin(c *gin.Context) {
	var req validation.SignInRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	u, tokens, err := h.deps.AuthSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, "signin", err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: u, Tokens: &tokens})
}

func (h *handlers) signinLanding(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "sign in required", "signin": "POST /auth/signin"})
}

func (h *handlers) refresh(c *gin.Context) {
	var req validation.RefreshRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	tokens, err := h.deps.AuthSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *handlers) signout(c *gin.Context) {
	var req validation.RefreshRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	if err := h.deps.AuthSvc.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		h.writeError(c, "signout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// forgotPassword answers 202 for any well-formed email so the response does
// not reveal which addresses have accounts.
func (h *handlers) forgotPassword(c *gin.Context) {
	var req validation.ForgotPasswordRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	if err := h.deps.AuthSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, "forgot password", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists, a reset link is on its way"})
}

func (h *handlers) resetPassword(c *gin.Context) {
	var req validation.ResetPasswordRequest
	if err := validation.BindAndValidate(c, &req, h.deps.Validator); err != nil {
		return
	}
	if err := h.deps.AuthSvc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.writeError(c, "reset password", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	s := sessionFrom(c)
	c.JSON(http.StatusOK, gin.H{"user": s.User, "role": s.Role})
}

func (h *handlers) unauthorized(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"error":   "unauthorized",
		"message": "you do not have permission to access this page",
	})
}
