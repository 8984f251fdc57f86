package service

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/admin_console/internal/repo"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// FromRepo lifts repository sentinels into service ones and leaves other
// errors untouched.
func FromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repo.ErrConflict), errors.Is(err, repo.ErrInUse):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
