package usecase

import (
	"errors"

	"bistroboard/internal/repo"
)

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, repo.ErrConflict)
}
