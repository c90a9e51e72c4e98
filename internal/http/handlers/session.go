package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brown2020/ikigaifinder/internal/http/middleware"
	"github.com/brown2020/ikigaifinder/internal/http/response"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/services"
)

type SessionHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewSessionHandler(log *logger.Logger, authService services.AuthService) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), authService: authService}
}

type createSessionRequest struct {
	IDToken string `json:"idToken"`
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	// body is optional; no body means an anonymous session
	_ = c.ShouldBindJSON(&req)

	token, user, err := h.authService.StartSession(c.Request.Context(), req.IDToken)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "session_failed"), err)
		return
	}

	maxAge := int(h.authService.GetSessionTTL().Seconds())
	secure := envutil.Bool("COOKIE_SECURE", true)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", secure, true)

	response.RespondOK(c, gin.H{"user": user})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	secure := envutil.Bool("COOKIE_SECURE", true)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", secure, true)
	response.RespondOK(c, gin.H{"message": "session ended"})
}
