package system

import (
	"context"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/util"
)

type Broadcaster interface {
	Broadcast(event string, data any) error
}

type LogSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.OperationLog, error)
}

// SystemService backs the role, menu, user, announcement and log screens.
type SystemService struct {
	Repo *repo.GormRepo
	// Hub and Search may be nil.
	Hub    Broadcaster
	Search LogSearcher
}

type PageQuery struct {
	Page int
	Size int
}

func (q PageQuery) bounds() (page, offset, limit int) {
	offset, limit = util.Calculate(q.Page, q.Size)
	return offset/limit + 1, offset, limit
}
