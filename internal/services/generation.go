package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brown2020/ikigaifinder/internal/ikigai"
	"github.com/brown2020/ikigaifinder/internal/locks"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/platform/openai"
	"github.com/brown2020/ikigaifinder/internal/sse"
	"github.com/brown2020/ikigaifinder/internal/sse/bus"
	"github.com/brown2020/ikigaifinder/internal/wizard"
)

// readyThreshold is how many merged candidates must exist before the
// frontend is told it can leave the waiting screen.
const readyThreshold = 5

// generationLockTTL bounds how long a crashed run can block its user.
const generationLockTTL = 5 * time.Minute

// GenerationService runs the streamed candidate generation. One run per
// user at a time; a second start while one is in flight is rejected with
// 409.
type GenerationService interface {
	Start(ctx context.Context) error
	// Cancel stops the user's in-flight run. Cancelling when nothing runs
	// is a no-op.
	Cancel(ctx context.Context) error
}

type generationService struct {
	log     *logger.Logger
	records RecordService
	openai  openai.Client
	events  bus.Bus
	locker  locks.Locker

	mu      sync.Mutex
	running map[uuid.UUID]context.CancelFunc
}

func NewGenerationService(
	log *logger.Logger,
	records RecordService,
	openaiClient openai.Client,
	events bus.Bus,
	locker locks.Locker,
) GenerationService {
	return &generationService{
		log:     log.With("service", "GenerationService"),
		records: records,
		openai:  openaiClient,
		events:  events,
		locker:  locker,
		running: make(map[uuid.UUID]context.CancelFunc),
	}
}

func (gs *generationService) Start(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized()
	}
	userID := rd.UserID

	record, state, err := gs.records.GetRecord(ctx)
	if err != nil {
		return err
	}
	if !wizard.Complete(state) {
		return apierr.New(http.StatusBadRequest, "wizard_incomplete", fmt.Errorf("answer all questions before generating"))
	}

	release, ok, err := gs.locker.TryAcquire(ctx, "generation:"+userID.String(), generationLockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	if !ok {
		return apierr.New(http.StatusConflict, "generation_in_progress", fmt.Errorf("a generation is already running"))
	}

	// The run outlives the HTTP request; progress flows over SSE.
	runCtx, cancel := context.WithCancel(context.Background())
	gs.mu.Lock()
	gs.running[userID] = cancel
	gs.mu.Unlock()

	system, user := ikigai.BuildGenerationPrompt(state.Steps, record.IkigaiGuidance)

	go func() {
		defer func() {
			gs.mu.Lock()
			delete(gs.running, userID)
			gs.mu.Unlock()
			cancel()
			release()
		}()
		gs.run(runCtx, userID, system, user)
	}()

	gs.publish(sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventGenerationStarted,
	})
	return nil
}

func (gs *generationService) run(ctx context.Context, userID uuid.UUID, system, user string) {
	log := gs.log.With("user_id", userID)
	channel := sse.UserChannel(userID)

	var (
		merged     []ikigai.Candidate
		readySent  bool
		accumBuf   []byte
		totalBytes int
	)

	onDelta := func(delta string) {
		accumBuf = append(accumBuf, delta...)
		totalBytes += len(delta)

		// Re-extract over the whole accumulated text: records straddling a
		// delta boundary only complete once the next chunk lands.
		extracted := ikigai.Extract(string(accumBuf))
		next := ikigai.Merge(merged, extracted)
		if len(next) == len(merged) {
			return
		}
		merged = next

		if err := gs.records.SaveCandidates(ctx, userID, merged); err != nil {
			log.Warn("Failed to persist candidates mid-stream", "error", err)
		}
		gs.publish(sse.SSEMessage{
			Channel: channel,
			Event:   sse.SSEEventIkigaiCandidates,
			Data:    map[string]any{"candidates": merged},
		})
		if !readySent && len(merged) >= readyThreshold {
			readySent = true
			gs.publish(sse.SSEMessage{
				Channel: channel,
				Event:   sse.SSEEventIkigaiReady,
				Data:    map[string]any{"count": len(merged)},
			})
		}
	}

	_, err := gs.openai.StreamText(ctx, system, user, onDelta)
	switch {
	case err == nil:
		log.Info("Generation complete", "candidates", len(merged), "bytes", totalBytes)
		gs.publish(sse.SSEMessage{
			Channel: channel,
			Event:   sse.SSEEventGenerationDone,
			Data:    map[string]any{"count": len(merged)},
		})
	case errors.Is(err, context.Canceled):
		log.Info("Generation cancelled", "candidates", len(merged))
		gs.publish(sse.SSEMessage{
			Channel: channel,
			Event:   sse.SSEEventGenerationCancelled,
			Data:    map[string]any{"count": len(merged)},
		})
	default:
		log.Error("Generation failed", "error", err)
		gs.publish(sse.SSEMessage{
			Channel: channel,
			Event:   sse.SSEEventGenerationFailed,
			Data:    map[string]any{"message": "generation failed, please try again"},
		})
	}
}

func (gs *generationService) Cancel(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized()
	}

	gs.mu.Lock()
	cancel, ok := gs.running[rd.UserID]
	gs.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

func (gs *generationService) publish(msg sse.SSEMessage) {
	publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gs.events.Publish(publishCtx, msg); err != nil {
		gs.log.Warn("Failed to publish SSE message", "event", msg.Event, "error", err)
	}
}
