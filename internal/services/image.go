package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/ikigai"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/fireworks"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/repos"
	"github.com/brown2020/ikigaifinder/internal/sse"
	"github.com/brown2020/ikigaifinder/internal/sse/bus"
	"github.com/brown2020/ikigaifinder/internal/types"
)

// ImageService renders the artwork for a selected ikigai: the generated
// illustration via Fireworks plus the locally drawn share cover. Images are
// stored inline as data URLs on the record.
type ImageService interface {
	// GenerateImage renders artwork for the user's selection. A non-empty
	// prompt overrides the one derived from the selected statement.
	GenerateImage(ctx context.Context, prompt string) (*types.IkigaiRecord, error)
}

type imageService struct {
	db         *gorm.DB
	log        *logger.Logger
	recordRepo repos.IkigaiRecordRepo
	fireworks  fireworks.Client
	cover      CoverService
	events     bus.Bus
}

func NewImageService(
	db *gorm.DB,
	log *logger.Logger,
	recordRepo repos.IkigaiRecordRepo,
	fireworksClient fireworks.Client,
	cover CoverService,
	events bus.Bus,
) ImageService {
	return &imageService{
		db:         db,
		log:        log.With("service", "ImageService"),
		recordRepo: recordRepo,
		fireworks:  fireworksClient,
		cover:      cover,
		events:     events,
	}
}

func (is *imageService) GenerateImage(ctx context.Context, prompt string) (*types.IkigaiRecord, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized()
	}
	userID := rd.UserID

	record, err := is.recordRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record == nil {
		return nil, apierr.New(http.StatusBadRequest, "no_selection", fmt.Errorf("select an ikigai before generating an image"))
	}
	selected, err := decodeSelected(record.IkigaiSelected)
	if err != nil {
		return nil, err
	}
	if selected == nil {
		return nil, apierr.New(http.StatusBadRequest, "no_selection", fmt.Errorf("select an ikigai before generating an image"))
	}

	coverBuf, err := is.cover.RenderCover(selected.Ikigai)
	if err != nil {
		return nil, fmt.Errorf("failed to render cover: %w", err)
	}
	coverURL := dataURL("image/png", coverBuf.Bytes())

	fields := map[string]any{"ikigai_cover_image": coverURL}

	// The cover doubles as the illustration when the API is unconfigured or
	// down, so the share page never shows a hole.
	if is.fireworks == nil {
		fields["ikigai_image"] = coverURL
	} else {
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			prompt = ikigai.BuildImagePrompt(*selected)
		}
		generated, genErr := is.fireworks.GenerateImage(ctx, prompt)
		if genErr != nil {
			is.log.Warn("Image generation failed; using cover as fallback", "error", genErr)
			fields["ikigai_image"] = coverURL
		} else {
			fields["ikigai_image"] = dataURL(generated.MimeType, generated.Bytes)
		}
	}

	if err := is.recordRepo.UpdateFields(ctx, nil, record.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to save images: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = is.events.Publish(publishCtx, sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventImageReady,
	})

	return is.recordRepo.GetByUserID(ctx, nil, userID)
}

func dataURL(mimeType string, raw []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
