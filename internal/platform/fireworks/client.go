package fireworks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brown2020/ikigaifinder/internal/platform/ctxutil"
	"github.com/brown2020/ikigaifinder/internal/platform/httpx"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
)

// Client talks to the Fireworks image generation API.
type Client interface {
	// GenerateImage renders prompt and returns the raw image bytes (PNG
	// unless the API says otherwise).
	GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error)
}

type ImageGeneration struct {
	Bytes    []byte
	MimeType string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	width      int
	height     int
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("FIREWORKS_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing FIREWORKS_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("FIREWORKS_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.fireworks.ai"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("FIREWORKS_IMAGE_MODEL"))
	if model == "" {
		model = "accounts/fireworks/models/stable-diffusion-xl-1024-v1-0"
	}

	width := 1024
	height := 1024
	if v := strings.TrimSpace(os.Getenv("FIREWORKS_IMAGE_SIZE")); v != "" {
		if parts := strings.SplitN(v, "x", 2); len(parts) == 2 {
			if w, err := strconv.Atoi(parts[0]); err == nil && w > 0 {
				width = w
			}
			if h, err := strconv.Atoi(parts[1]); err == nil && h > 0 {
				height = h
			}
		}
	}

	timeoutSec := 120
	if v := strings.TrimSpace(os.Getenv("FIREWORKS_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("service", "FireworksClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		width:      width,
		height:     height,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: 2,
	}, nil
}

type fireworksHTTPError struct {
	StatusCode int
	Body       string
}

func (e *fireworksHTTPError) Error() string {
	return fmt.Sprintf("fireworks http %d: %s", e.StatusCode, e.Body)
}

func (e *fireworksHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type imageRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (c *client) GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error) {
	var out ImageGeneration
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return out, errors.New("image prompt required")
	}

	path := "/inference/v1/image_generation/" + c.model
	body := imageRequest{Prompt: prompt, Width: c.width, Height: c.height}

	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		raw, mime, err := c.doOnce(ctx, path, body)
		if err == nil {
			out.Bytes = raw
			out.MimeType = mime
			return out, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return out, err
		}

		sleepFor := httpx.JitterSleep(backoff)
		c.log.Warn("Fireworks request retrying",
			"attempt", attempt+1,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return out, errors.New("fireworks image request failed")
}

func (c *client) doOnce(ctx context.Context, path string, body any) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "POST", c.baseURL+path, &buf)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &fireworksHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if mime == "" {
		mime = "image/png"
	}
	return raw, mime, nil
}
