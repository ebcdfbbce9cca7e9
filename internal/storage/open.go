package storage

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Open builds and initialises the repository named by backend: "sqlite"
// (path is the database file), "file" (dir holds JSON files) or "none",
// which returns a nil Repository.
func Open(backend, path, dir string, devMode bool) (Repository, error) {
	var repo Repository
	switch backend {
	case "none", "":
		log.Info().Msg("persistence disabled")
		return nil, nil
	case "sqlite":
		store, err := NewStore(path, devMode)
		if err != nil {
			return nil, err
		}
		repo = store
	case "file":
		repo = NewFileStore(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	if err := repo.InitDB(); err != nil {
		repo.Close()
		return nil, fmt.Errorf("initialise %s storage: %w", backend, err)
	}
	log.Info().Str("backend", backend).Msg("persistence enabled")
	return repo, nil
}
