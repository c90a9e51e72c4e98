package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/catalog"
	"github.com/brown2020/ikigaifinder/internal/ikigai"
	"github.com/brown2020/ikigaifinder/internal/platform/apierr"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/repos"
	"github.com/brown2020/ikigaifinder/internal/types"
	"github.com/brown2020/ikigaifinder/internal/wizard"
)

// maxGuidanceLength caps the free-text steering instruction.
const maxGuidanceLength = 500

// RecordService owns the per-user Ikigai record: wizard state, generated
// candidates, selection, regeneration guidance and sharing. Reads
// default-create the record, so the rest of the backend can assume it
// exists.
type RecordService interface {
	GetRecord(ctx context.Context) (*types.IkigaiRecord, wizard.State, error)
	SubmitStep(ctx context.Context, index int, answers map[string][]string) (wizard.State, []catalog.FieldError, error)
	Back(ctx context.Context) (wizard.State, error)
	JumpTo(ctx context.Context, target int) (wizard.State, error)

	Candidates(ctx context.Context, userID uuid.UUID) ([]ikigai.Candidate, error)
	SaveCandidates(ctx context.Context, userID uuid.UUID, candidates []ikigai.Candidate) error

	Select(ctx context.Context, statement string) (*types.IkigaiRecord, error)
	// SetGuidance stores the user's steering instruction for the next
	// generation run.
	SetGuidance(ctx context.Context, guidance string) (*types.IkigaiRecord, error)

	SetSharable(ctx context.Context, userID uuid.UUID, sharable bool) (*types.IkigaiRecord, error)
	GetShared(ctx context.Context, slug string) (*SharedRecord, error)
}

// SharedRecord is the public projection of a shared record. No answers, no
// user identity beyond display name.
type SharedRecord struct {
	DisplayName string            `json:"displayName,omitempty"`
	Selected    *ikigai.Candidate `json:"selected"`
	Image       string            `json:"image,omitempty"`
	CoverImage  string            `json:"coverImage,omitempty"`
}

type recordService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	recordRepo repos.IkigaiRecordRepo
}

func NewRecordService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	recordRepo repos.IkigaiRecordRepo,
) RecordService {
	return &recordService{
		db:         db,
		log:        log.With("service", "RecordService"),
		userRepo:   userRepo,
		recordRepo: recordRepo,
	}
}

func (rs *recordService) requireUserID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized()
	}
	return rd.UserID, nil
}

// loadOrCreate fetches the user's record, creating an empty one on first
// touch.
func (rs *recordService) loadOrCreate(ctx context.Context, userID uuid.UUID) (*types.IkigaiRecord, error) {
	record, err := rs.recordRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if record != nil {
		return record, nil
	}

	fresh := &types.IkigaiRecord{
		ID:     uuid.New(),
		UserID: userID,
	}
	if fresh.Answers, err = encodeState(wizard.NewState()); err != nil {
		return nil, err
	}
	created, err := rs.recordRepo.Create(ctx, nil, []*types.IkigaiRecord{fresh})
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	return created[0], nil
}

func (rs *recordService) GetRecord(ctx context.Context) (*types.IkigaiRecord, wizard.State, error) {
	userID, err := rs.requireUserID(ctx)
	if err != nil {
		return nil, wizard.State{}, err
	}
	record, err := rs.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, wizard.State{}, err
	}
	state, err := decodeState(record.Answers)
	if err != nil {
		rs.log.Warn("Stored wizard state unreadable; resetting", "user_id", userID, "error", err)
		state = wizard.NewState()
	}
	return record, state, nil
}

func (rs *recordService) SubmitStep(ctx context.Context, index int, answers map[string][]string) (wizard.State, []catalog.FieldError, error) {
	record, state, err := rs.GetRecord(ctx)
	if err != nil {
		return wizard.State{}, nil, err
	}

	next, fieldErrs, err := wizard.SubmitStep(state, index, answers)
	if err != nil {
		return state, nil, apierr.New(http.StatusBadRequest, "invalid_step", err)
	}
	if len(fieldErrs) > 0 {
		return state, fieldErrs, nil
	}

	fields := map[string]any{}
	raw, err := encodeState(next)
	if err != nil {
		return state, nil, err
	}
	fields["answers"] = raw

	// Editing a leading answer makes earlier generations stale.
	if wizard.AnswersChanged(state, next) && len(record.IkigaiOptions) > 0 {
		fields["ikigai_options"] = datatypes.JSON(nil)
		fields["ikigai_selected"] = datatypes.JSON(nil)
	}

	if err := rs.recordRepo.UpdateFields(ctx, nil, record.ID, fields); err != nil {
		return state, nil, fmt.Errorf("failed to save answers: %w", err)
	}
	return next, nil, nil
}

func (rs *recordService) Back(ctx context.Context) (wizard.State, error) {
	record, state, err := rs.GetRecord(ctx)
	if err != nil {
		return wizard.State{}, err
	}
	next := wizard.Back(state)
	if err := rs.saveState(ctx, record.ID, next); err != nil {
		return state, err
	}
	return next, nil
}

func (rs *recordService) JumpTo(ctx context.Context, target int) (wizard.State, error) {
	record, state, err := rs.GetRecord(ctx)
	if err != nil {
		return wizard.State{}, err
	}
	next, err := wizard.JumpTo(state, target)
	if err != nil {
		return state, apierr.New(http.StatusBadRequest, "jump_not_allowed", err)
	}
	if err := rs.saveState(ctx, record.ID, next); err != nil {
		return state, err
	}
	return next, nil
}

func (rs *recordService) saveState(ctx context.Context, recordID uuid.UUID, state wizard.State) error {
	raw, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := rs.recordRepo.UpdateFields(ctx, nil, recordID, map[string]any{"answers": raw}); err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

func (rs *recordService) Candidates(ctx context.Context, userID uuid.UUID) ([]ikigai.Candidate, error) {
	record, err := rs.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return decodeCandidates(record.IkigaiOptions)
}

func (rs *recordService) SaveCandidates(ctx context.Context, userID uuid.UUID, candidates []ikigai.Candidate) error {
	record, err := rs.loadOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}
	return rs.recordRepo.UpdateFields(ctx, nil, record.ID, map[string]any{
		"ikigai_options": datatypes.JSON(raw),
	})
}

func (rs *recordService) Select(ctx context.Context, statement string) (*types.IkigaiRecord, error) {
	userID, err := rs.requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	record, err := rs.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := decodeCandidates(record.IkigaiOptions)
	if err != nil {
		return nil, err
	}

	var selected *ikigai.Candidate
	for i := range candidates {
		if candidates[i].Ikigai == statement {
			selected = &candidates[i]
			break
		}
	}
	if selected == nil {
		return nil, apierr.New(http.StatusBadRequest, "unknown_statement", fmt.Errorf("statement is not one of the generated candidates"))
	}

	raw, err := json.Marshal(selected)
	if err != nil {
		return nil, fmt.Errorf("failed to encode selection: %w", err)
	}
	if err := rs.recordRepo.UpdateFields(ctx, nil, record.ID, map[string]any{
		"ikigai_selected": datatypes.JSON(raw),
	}); err != nil {
		return nil, fmt.Errorf("failed to save selection: %w", err)
	}
	return rs.recordRepo.GetByUserID(ctx, nil, userID)
}

func (rs *recordService) SetGuidance(ctx context.Context, guidance string) (*types.IkigaiRecord, error) {
	userID, err := rs.requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	record, err := rs.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	guidance = strings.TrimSpace(guidance)
	if len(guidance) > maxGuidanceLength {
		return nil, apierr.New(http.StatusBadRequest, "guidance_too_long",
			fmt.Errorf("guidance must be at most %d characters", maxGuidanceLength))
	}

	if err := rs.recordRepo.UpdateFields(ctx, nil, record.ID, map[string]any{
		"ikigai_guidance": guidance,
	}); err != nil {
		return nil, fmt.Errorf("failed to save guidance: %w", err)
	}
	return rs.recordRepo.GetByUserID(ctx, nil, userID)
}

// SetSharable toggles sharing for userID's record. The caller has already
// checked that the requester is userID; this still refuses cross-user
// writes as a second line.
func (rs *recordService) SetSharable(ctx context.Context, userID uuid.UUID, sharable bool) (*types.IkigaiRecord, error) {
	requester, err := rs.requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if requester != userID {
		return nil, apierr.Forbidden()
	}

	record, err := rs.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"sharable": sharable}
	if sharable {
		selected, err := decodeSelected(record.IkigaiSelected)
		if err != nil {
			return nil, err
		}
		if selected == nil {
			return nil, apierr.New(http.StatusBadRequest, "no_selection", fmt.Errorf("select an ikigai before sharing"))
		}
		if record.SharableSlug == "" {
			slug, err := rs.newSlug(ctx)
			if err != nil {
				return nil, err
			}
			fields["sharable_slug"] = slug
		}
	}

	if err := rs.recordRepo.UpdateFields(ctx, nil, record.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to update sharing: %w", err)
	}
	return rs.recordRepo.GetByUserID(ctx, nil, userID)
}

func (rs *recordService) GetShared(ctx context.Context, slug string) (*SharedRecord, error) {
	record, err := rs.recordRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.Sharable {
		return nil, apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("no shared ikigai for this link"))
	}

	selected, err := decodeSelected(record.IkigaiSelected)
	if err != nil {
		return nil, err
	}

	shared := &SharedRecord{
		Selected:   selected,
		Image:      record.IkigaiImage,
		CoverImage: record.IkigaiCoverImage,
	}
	if owner, err := rs.userRepo.GetByID(ctx, nil, record.UserID); err == nil && owner != nil {
		shared.DisplayName = owner.DisplayName
	}
	return shared, nil
}

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func (rs *recordService) newSlug(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 10)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := range buf {
			buf[i] = slugAlphabet[int(buf[i])%len(slugAlphabet)]
		}
		slug := string(buf)

		exists, err := rs.recordRepo.SlugExists(ctx, nil, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique share slug")
}

func encodeState(state wizard.State) (datatypes.JSON, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wizard state: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func decodeState(raw datatypes.JSON) (wizard.State, error) {
	if len(raw) == 0 {
		return wizard.NewState(), nil
	}
	var state wizard.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return wizard.State{}, fmt.Errorf("failed to decode wizard state: %w", err)
	}
	return wizard.Normalize(state), nil
}

func decodeCandidates(raw datatypes.JSON) ([]ikigai.Candidate, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var candidates []ikigai.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return candidates, nil
}

func decodeSelected(raw datatypes.JSON) (*ikigai.Candidate, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var selected ikigai.Candidate
	if err := json.Unmarshal(raw, &selected); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}
	return &selected, nil
}
