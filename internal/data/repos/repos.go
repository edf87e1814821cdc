package repos

import (
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/pkg/logger"
)

// Repos bundles every repository over one database handle.
type Repos struct {
	Vorgang  VorgangRepo
	Station  StationRepo
	Dokument DokumentRepo
	Autor    AutorRepo
	Gremium  GremiumRepo
	Sitzung  SitzungRepo
	ApiKey   ApiKeyRepo
	Touch    TouchRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *Repos {
	return &Repos{
		Vorgang:  NewVorgangRepo(db, baseLog),
		Station:  NewStationRepo(db, baseLog),
		Dokument: NewDokumentRepo(db, baseLog),
		Autor:    NewAutorRepo(db, baseLog),
		Gremium:  NewGremiumRepo(db, baseLog),
		Sitzung:  NewSitzungRepo(db, baseLog),
		ApiKey:   NewApiKeyRepo(db, baseLog),
		Touch:    NewTouchRepo(db, baseLog),
	}
}
