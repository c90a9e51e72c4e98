package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
)

// CoverService renders the local share card: a gradient keyed off the
// statement text, with the statement drawn on top when a font is
// configured. It needs no external API, so shares always have an image
// even when generation is unavailable.
type CoverService interface {
	RenderCover(statement string) (bytes.Buffer, error)
}

type coverService struct {
	log      *logger.Logger
	width    int
	height   int
	fontFace font.Face
}

var coverPalette = []color.NRGBA{
	{R: 0x2E, G: 0x6F, B: 0x6C, A: 0xFF},
	{R: 0xB0, G: 0x5C, B: 0x3D, A: 0xFF},
	{R: 0x3D, G: 0x5A, B: 0x80, A: 0xFF},
	{R: 0x6A, G: 0x4C, B: 0x93, A: 0xFF},
	{R: 0x8C, G: 0x3A, B: 0x54, A: 0xFF},
	{R: 0x2F, G: 0x6B, B: 0x3C, A: 0xFF},
}

func NewCoverService(log *logger.Logger) (CoverService, error) {
	serviceLog := log.With("service", "CoverService")

	cs := &coverService{
		log:    serviceLog,
		width:  envutil.Int("COVER_WIDTH", 1200),
		height: envutil.Int("COVER_HEIGHT", 630),
	}

	fontPath := envutil.String("COVER_FONT", "")
	if fontPath != "" {
		face, err := loadCoverFont(fontPath, float64(envutil.Int("COVER_FONT_SIZE", 56)))
		if err != nil {
			return nil, fmt.Errorf("could not load cover font: %w", err)
		}
		cs.fontFace = face
	} else {
		serviceLog.Info("COVER_FONT not set; covers render without text")
	}

	return cs, nil
}

func (cs *coverService) RenderCover(statement string) (bytes.Buffer, error) {
	var buf bytes.Buffer
	statement = strings.TrimSpace(statement)

	dc := gg.NewContext(cs.width, cs.height)

	top, bottom := pickCoverColors(statement)
	grad := gg.NewLinearGradient(0, 0, float64(cs.width), float64(cs.height))
	grad.AddColorStop(0, top)
	grad.AddColorStop(1, bottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(cs.width), float64(cs.height))
	dc.Fill()

	if cs.fontFace != nil && statement != "" {
		dc.SetFontFace(cs.fontFace)
		dc.SetColor(color.White)
		margin := float64(cs.width) / 10
		dc.DrawStringWrapped(
			statement,
			float64(cs.width)/2, float64(cs.height)/2,
			0.5, 0.5,
			float64(cs.width)-2*margin,
			1.4,
			gg.AlignCenter,
		)
	}

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// pickCoverColors derives a stable color pair from the statement so the
// same ikigai always shares the same card.
func pickCoverColors(statement string) (color.NRGBA, color.NRGBA) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(statement))
	i := int(h.Sum32()) % len(coverPalette)
	if i < 0 {
		i += len(coverPalette)
	}
	top := coverPalette[i]
	bottom := coverPalette[(i+2)%len(coverPalette)]
	return top, bottom
}

func loadCoverFont(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
