package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brown2020/ikigaifinder/internal/catalog"
	"github.com/brown2020/ikigaifinder/internal/ikigai"
	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/services"
	"github.com/brown2020/ikigaifinder/internal/types"
	"github.com/brown2020/ikigaifinder/internal/wizard"
)

// stubRecordService records calls so handler tests can assert routing and
// guard behavior without a database.
type stubRecordService struct {
	setSharableCalls int
	lastSharable     bool

	submitFieldErrs []catalog.FieldError
}

func (s *stubRecordService) GetRecord(ctx context.Context) (*types.IkigaiRecord, wizard.State, error) {
	return &types.IkigaiRecord{}, wizard.NewState(), nil
}

func (s *stubRecordService) SubmitStep(ctx context.Context, index int, answers map[string][]string) (wizard.State, []catalog.FieldError, error) {
	return wizard.NewState(), s.submitFieldErrs, nil
}

func (s *stubRecordService) Back(ctx context.Context) (wizard.State, error) {
	return wizard.NewState(), nil
}

func (s *stubRecordService) JumpTo(ctx context.Context, target int) (wizard.State, error) {
	return wizard.NewState(), nil
}

func (s *stubRecordService) Candidates(ctx context.Context, userID uuid.UUID) ([]ikigai.Candidate, error) {
	return nil, nil
}

func (s *stubRecordService) SaveCandidates(ctx context.Context, userID uuid.UUID, candidates []ikigai.Candidate) error {
	return nil
}

func (s *stubRecordService) Select(ctx context.Context, statement string) (*types.IkigaiRecord, error) {
	return &types.IkigaiRecord{}, nil
}

func (s *stubRecordService) SetGuidance(ctx context.Context, guidance string) (*types.IkigaiRecord, error) {
	return &types.IkigaiRecord{}, nil
}

func (s *stubRecordService) SetSharable(ctx context.Context, userID uuid.UUID, sharable bool) (*types.IkigaiRecord, error) {
	s.setSharableCalls++
	s.lastSharable = sharable
	record := &types.IkigaiRecord{UserID: userID, Sharable: sharable}
	if sharable {
		record.SharableSlug = "slug123abc"
	}
	return record, nil
}

func (s *stubRecordService) GetShared(ctx context.Context, slug string) (*services.SharedRecord, error) {
	return &services.SharedRecord{}, nil
}

func newShareRequest(t *testing.T, body string, userID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/v1/ikigai/share", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = req.WithContext(ctxutil.WithRequestData(req.Context(), &ctxutil.RequestData{UserID: userID}))
	}
	return req
}

func shareErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, body)
	}
	return envelope.Error.Code
}

func TestShare_GuardMatrix(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	owner := uuid.New()
	stranger := uuid.New()

	cases := []struct {
		name       string
		body       string
		identity   uuid.UUID
		wantStatus int
		wantCode   string
		wantCalls  int
	}{
		{
			name:       "missing sharable",
			body:       `{"userId":"` + owner.String() + `"}`,
			identity:   owner,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_payload",
		},
		{
			name:       "missing userId",
			body:       `{"sharable":true}`,
			identity:   owner,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_payload",
		},
		{
			name:       "malformed userId",
			body:       `{"userId":"not-a-uuid","sharable":true}`,
			identity:   owner,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_payload",
		},
		{
			name:       "no identity",
			body:       `{"userId":"` + owner.String() + `","sharable":true}`,
			identity:   uuid.Nil,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "identity mismatch",
			body:       `{"userId":"` + owner.String() + `","sharable":true}`,
			identity:   stranger,
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "owner enables sharing",
			body:       `{"userId":"` + owner.String() + `","sharable":true}`,
			identity:   owner,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "owner disables sharing",
			body:       `{"userId":"` + owner.String() + `","sharable":false}`,
			identity:   owner,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubRecordService{}
			handler := NewIkigaiHandler(log, stub)

			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = newShareRequest(t, tc.body, tc.identity)

			handler.Share(c)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantCode != "" {
				if got := shareErrorCode(t, rec.Body.Bytes()); got != tc.wantCode {
					t.Fatalf("error code: got=%q want=%q", got, tc.wantCode)
				}
			}
			if stub.setSharableCalls != tc.wantCalls {
				t.Fatalf("SetSharable calls: got=%d want=%d", stub.setSharableCalls, tc.wantCalls)
			}
		})
	}
}

func TestShare_SuccessResponseShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	owner := uuid.New()

	patch := func(t *testing.T, sharable string) map[string]any {
		t.Helper()
		stub := &stubRecordService{}
		handler := NewIkigaiHandler(log, stub)

		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = newShareRequest(t, `{"userId":"`+owner.String()+`","sharable":`+sharable+`}`, owner)
		handler.Share(c)

		if rec.Code != http.StatusOK {
			t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return body
	}

	enabled := patch(t, "true")
	if enabled["ok"] != true {
		t.Fatalf("expected ok=true, got %+v", enabled)
	}
	url, _ := enabled["ikigaiSharableUrl"].(string)
	if !strings.HasSuffix(url, "/share/slug123abc") {
		t.Fatalf("sharable url missing slug path: %q", url)
	}

	disabled := patch(t, "false")
	if disabled["ok"] != true {
		t.Fatalf("expected ok=true on disable, got %+v", disabled)
	}
	if got, _ := disabled["ikigaiSharableUrl"].(string); got != "" {
		t.Fatalf("disabled share must not carry a url, got %q", got)
	}
}

func TestSubmitStep_FieldErrorsShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	stub := &stubRecordService{
		submitFieldErrs: []catalog.FieldError{{QuestionID: "activities", Message: "Please answer."}},
	}
	handler := NewIkigaiHandler(log, stub)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/ikigai/steps/0", strings.NewReader(`{"answers":{}}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "step", Value: "0"}}

	handler.SubmitStep(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		FieldErrors []catalog.FieldError `json:"fieldErrors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "validation_failed" {
		t.Fatalf("error code: got=%q", body.Error.Code)
	}
	if len(body.FieldErrors) != 1 || body.FieldErrors[0].QuestionID != "activities" {
		t.Fatalf("field errors not surfaced: %+v", body.FieldErrors)
	}
}

func TestSubmitStep_RejectsNonNumericStep(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	handler := NewIkigaiHandler(log, &stubRecordService{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/ikigai/steps/abc", strings.NewReader(`{}`))
	c.Params = gin.Params{{Key: "step", Value: "abc"}}

	handler.SubmitStep(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
}
