package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brown2020/ikigaifinder/internal/http/response"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/services"
)

type GenerationHandler struct {
	log               *logger.Logger
	generationService services.GenerationService
}

func NewGenerationHandler(log *logger.Logger, generationService services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		log:               log.With("handler", "GenerationHandler"),
		generationService: generationService,
	}
}

// StartGeneration kicks off a run and returns 202 immediately; candidates
// arrive on the SSE stream.
func (h *GenerationHandler) StartGeneration(c *gin.Context) {
	if err := h.generationService.Start(c.Request.Context()); err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "generation_failed"), err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "generation started"})
}

func (h *GenerationHandler) CancelGeneration(c *gin.Context) {
	if err := h.generationService.Cancel(c.Request.Context()); err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "cancel_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"message": "generation cancelled"})
}
