package system

import (
	"context"
	"errors"

	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service"
)

var ErrSearchDisabled = errors.New("log search is not configured")

type LogQuery struct {
	PageQuery
	UserName string
	Method   string
	Text     string
}

func (s *SystemService) ListLogs(ctx context.Context, q LogQuery) (*service.Page[models.OperationLog], error) {
	page, offset, limit := q.bounds()
	total, items, err := s.Repo.ListOperationLogs(ctx, repo.OperationLogFilter{UserName: q.UserName, Method: q.Method}, offset, limit)
	if err != nil {
		return nil, err
	}
	return &service.Page[models.OperationLog]{List: items, Total: total, Page: page, Size: limit}, nil
}

func (s *SystemService) SearchLogs(ctx context.Context, q LogQuery) (*service.Page[models.OperationLog], error) {
	if s.Search == nil {
		return nil, ErrSearchDisabled
	}
	page, offset, limit := q.bounds()
	total, items, err := s.Search.Search(ctx, q.Text, offset, limit)
	if err != nil {
		return nil, err
	}
	return &service.Page[models.OperationLog]{List: items, Total: total, Page: page, Size: limit}, nil
}
