package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brown2020/ikigaifinder/internal/http/response"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/services"
)

type ImageHandler struct {
	log          *logger.Logger
	imageService services.ImageService
}

func NewImageHandler(log *logger.Logger, imageService services.ImageService) *ImageHandler {
	return &ImageHandler{log: log.With("handler", "ImageHandler"), imageService: imageService}
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	_ = c.ShouldBindJSON(&req)

	record, err := h.imageService.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "image_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{
		"imageUrl":      record.IkigaiImage,
		"coverImageUrl": record.IkigaiCoverImage,
	})
}
