package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brown2020/ikigaifinder/internal/catalog"
	"github.com/brown2020/ikigaifinder/internal/http/response"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/services"
	"github.com/brown2020/ikigaifinder/internal/types"
)

type IkigaiHandler struct {
	log           *logger.Logger
	recordService services.RecordService
}

func NewIkigaiHandler(log *logger.Logger, recordService services.RecordService) *IkigaiHandler {
	return &IkigaiHandler{log: log.With("handler", "IkigaiHandler"), recordService: recordService}
}

func (h *IkigaiHandler) GetQuestions(c *gin.Context) {
	response.RespondOK(c, gin.H{"steps": catalog.Steps()})
}

func (h *IkigaiHandler) GetIkigai(c *gin.Context) {
	record, state, err := h.recordService.GetRecord(c.Request.Context())
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "record_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"record": record, "state": state})
}

type submitStepRequest struct {
	Answers map[string][]string `json:"answers"`
}

func (h *IkigaiHandler) SubmitStep(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_step", err)
		return
	}

	var req submitStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	state, fieldErrs, err := h.recordService.SubmitStep(c.Request.Context(), index, req.Answers)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "submit_failed"), err)
		return
	}
	if len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       gin.H{"message": "validation failed", "code": "validation_failed"},
			"fieldErrors": fieldErrs,
		})
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

func (h *IkigaiHandler) Back(c *gin.Context) {
	state, err := h.recordService.Back(c.Request.Context())
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "back_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

type jumpRequest struct {
	Step int `json:"step"`
}

func (h *IkigaiHandler) JumpTo(c *gin.Context) {
	var req jumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	state, err := h.recordService.JumpTo(c.Request.Context(), req.Step)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "jump_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"state": state})
}

type selectRequest struct {
	Ikigai string `json:"ikigai"`
}

func (h *IkigaiHandler) Select(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Ikigai == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	record, err := h.recordService.Select(c.Request.Context(), req.Ikigai)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "select_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"record": record})
}

type guidanceRequest struct {
	Guidance string `json:"guidance"`
}

func (h *IkigaiHandler) SetGuidance(c *gin.Context) {
	var req guidanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	record, err := h.recordService.SetGuidance(c.Request.Context(), req.Guidance)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "guidance_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"record": record})
}

type shareRequest struct {
	UserID   string `json:"userId"`
	Sharable *bool  `json:"sharable"`
}

// Share toggles public sharing. The payload names the record owner; a
// requester patching someone else's record gets 403.
func (h *IkigaiHandler) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Sharable == nil || req.UserID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apierr.Unauthorized())
		return
	}
	if rd.UserID != targetID {
		response.RespondError(c, http.StatusForbidden, "forbidden", apierr.Forbidden())
		return
	}

	record, err := h.recordService.SetSharable(c.Request.Context(), targetID, *req.Sharable)
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "share_failed"), err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "ikigaiSharableUrl": sharableURL(record)})
}

// sharableURL builds the public link for a shared record. Empty when the
// record is not shared.
func sharableURL(record *types.IkigaiRecord) string {
	if record == nil || !record.Sharable || record.SharableSlug == "" {
		return ""
	}
	base := strings.TrimRight(envutil.String("PUBLIC_BASE_URL", "http://localhost:3000"), "/")
	return base + "/share/" + record.SharableSlug
}

func (h *IkigaiHandler) GetShared(c *gin.Context) {
	shared, err := h.recordService.GetShared(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondError(c, apierr.StatusCode(err, http.StatusInternalServerError),
			apierr.CodeOf(err, "share_lookup_failed"), err)
		return
	}
	response.RespondOK(c, shared)
}
