package app

import (
	"gorm.io/gorm"

	"github.com/brown2020/ikigaifinder/internal/platform/logger"
	"github.com/brown2020/ikigaifinder/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	IkigaiRecord repos.IkigaiRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		IkigaiRecord: repos.NewIkigaiRecordRepo(db, log),
	}
}
