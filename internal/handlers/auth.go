package handlers

import (
	"errors"
	"net/http"
	"strings"

	"robot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// operatorCredentials is the body of both sign-up and sign-in.
type operatorCredentials struct {
	Username string `json:"username" binding:"required" example:"operator1"`
	Password string `json:"password" binding:"required" example:"s3cr3t!"`
}

func (h *Handler) bindCredentials(c *gin.Context) (operatorCredentials, bool) {
	var in operatorCredentials
	if !h.bindJSONOrBadRequest(c, &in) {
		return in, false
	}
	in.Username = strings.TrimSpace(in.Username)
	return in, true
}

// bindJSONOrBadRequest answers 400 and returns false when the body does not bind.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}

// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	input, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	id, err := h.services.SignUp(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, "failed to sign up", "auth_sign_up_failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Sign in
// @Description  Returns a bearer token for /api/v1
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	input, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.services.GenerateToken(c.Request.Context(), input.Username, input.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		if h.log != nil {
			h.log.Infow("auth_sign_in_rejected", "username", input.Username)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrBadCredentials.Error()})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to sign in", "auth_sign_in_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

