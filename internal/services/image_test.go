package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/ikigai"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/sse/bus"
	"github.com/brown2020/ikigaifinder/internal/types"
)

// stubRecordRepo hands back one fixed record and captures column patches.
type stubRecordRepo struct {
	record      *types.IkigaiRecord
	lastUpdated map[string]any
}

func (s *stubRecordRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.IkigaiRecord) ([]*types.IkigaiRecord, error) {
	return records, nil
}

func (s *stubRecordRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.IkigaiRecord, error) {
	return s.record, nil
}

func (s *stubRecordRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.IkigaiRecord, error) {
	return nil, nil
}

func (s *stubRecordRepo) UpdateFields(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, fields map[string]any) error {
	s.lastUpdated = fields
	return nil
}

func (s *stubRecordRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	return false, nil
}

func TestGenerateImage_NoImageAPIUsesCover(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	cover := newCoverService(t)

	userID := uuid.New()
	selected, err := json.Marshal(ikigai.Candidate{Ikigai: "Teach kids to code."})
	if err != nil {
		t.Fatalf("encode selection: %v", err)
	}
	repo := &stubRecordRepo{record: &types.IkigaiRecord{
		ID:             uuid.New(),
		UserID:         userID,
		IkigaiSelected: datatypes.JSON(selected),
	}}

	svc := NewImageService(nil, log, repo, nil, cover, bus.NewLocalBus(log))

	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
	if _, err := svc.GenerateImage(ctx, ""); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}

	coverURL, _ := repo.lastUpdated["ikigai_cover_image"].(string)
	imageURL, _ := repo.lastUpdated["ikigai_image"].(string)
	if !strings.HasPrefix(coverURL, "data:image/png;base64,") {
		t.Fatalf("cover not stored as data url: %.40q", coverURL)
	}
	if imageURL != coverURL {
		t.Fatal("without an image API the cover must stand in for the illustration")
	}
}

func TestGenerateImage_RequiresSelection(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	cover := newCoverService(t)

	userID := uuid.New()
	repo := &stubRecordRepo{record: &types.IkigaiRecord{ID: uuid.New(), UserID: userID}}
	svc := NewImageService(nil, log, repo, nil, cover, bus.NewLocalBus(log))

	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
	if _, err := svc.GenerateImage(ctx, ""); err == nil {
		t.Fatal("expected error without a selection")
	}
	if repo.lastUpdated != nil {
		t.Fatalf("nothing should be written without a selection, got %+v", repo.lastUpdated)
	}
}
