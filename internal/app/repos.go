package app

import (
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

func wireRepos(db *gorm.DB, log *logger.Logger) *repos.Repos {
	return repos.New(db, log)
}
