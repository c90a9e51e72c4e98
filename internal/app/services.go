package app

import (
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Record     services.RecordService
	Generation services.GenerationService
	Cover      services.CoverService
	Image      services.ImageService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.IDTokenSecret, cfg.SessionTTL)
	recordService := services.NewRecordService(db, log, reposet.User, reposet.IkigaiRecord)
	generationService := services.NewGenerationService(log, recordService, clients.OpenAI, clients.EventBus, clients.Locker)

	coverService, err := services.NewCoverService(log)
	if err != nil {
		return Services{}, err
	}
	imageService := services.NewImageService(db, log, reposet.IkigaiRecord, clients.Fireworks, coverService, clients.EventBus)

	return Services{
		Auth:       authService,
		Record:     recordService,
		Generation: generationService,
		Cover:      coverService,
		Image:      imageService,
	}, nil
}
