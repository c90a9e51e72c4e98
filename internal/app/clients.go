package app

import (
	"github.com/brown2020/ikigaifinder/internal/locks"
	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/fireworks"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/platform/openai"
	"github.com/brown2020/ikigaifinder/internal/sse/bus"
)

type Clients struct {
	OpenAI    openai.Client
	Fireworks fireworks.Client
	EventBus  bus.Bus
	Locker    locks.Locker
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	// The illustration API is optional; without it the cover renderer
	// stands in for generated images.
	var fireworksClient fireworks.Client
	if envutil.String("FIREWORKS_API_KEY", "") != "" {
		fireworksClient, err = fireworks.NewClient(log)
		if err != nil {
			return Clients{}, err
		}
	} else {
		log.Info("FIREWORKS_API_KEY not set; images fall back to the cover renderer")
	}

	eventBus, err := bus.NewSSEBus(log)
	if err != nil {
		return Clients{}, err
	}

	return Clients{
		OpenAI:    openaiClient,
		Fireworks: fireworksClient,
		EventBus:  eventBus,
		Locker:    locks.NewLocker(log),
	}, nil
}
