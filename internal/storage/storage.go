package storage

import (
	"context"
	"errors"

	"github.com/xaenox/chronex/internal/models"
)

// ErrNotFound is returned by LoadLibrary when no document has been saved yet.
var ErrNotFound = errors.New("library document not found")

type Storage interface {
	LoadLibrary(ctx context.Context) (*models.LibraryRecord, error)
	SaveLibrary(ctx context.Context, record *models.LibraryRecord) error
	Close() error
}
