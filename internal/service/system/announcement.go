package system

import (
	"context"
	"strings"

	"github.com/Skotchmaster/admin_console/internal/announce"
	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/internal/repo"
	"github.com/Skotchmaster/admin_console/internal/service"
	"github.com/Skotchmaster/admin_console/pkg/logging"
)

type AnnouncementQuery struct {
	PageQuery
	Title string
	Type  string
}

type SaveAnnouncementParams struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Type    string        `json:"type"`
	Status  models.Status `json:"status"`
	Pinned  bool          `json:"pinned"`
}

func (s *SystemService) ListAnnouncements(ctx context.Context, q AnnouncementQuery) (*service.Page[models.Announcement], error) {
	page, offset, limit := q.bounds()
	total, items, err := s.Repo.ListAnnouncements(ctx, repo.AnnouncementFilter{Title: q.Title, Type: q.Type}, offset, limit)
	if err != nil {
		return nil, err
	}
	return &service.Page[models.Announcement]{List: items, Total: total, Page: page, Size: limit}, nil
}

// SaveAnnouncement stores the announcement and pushes it to every connected
// console. A failed push does not undo the save.
func (s *SystemService) SaveAnnouncement(ctx context.Context, authorID string, p SaveAnnouncementParams) (*models.Announcement, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || strings.TrimSpace(p.Content) == "" {
		return nil, service.Validation("title and content are required")
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}

	a := &models.Announcement{
		Base:    models.Base{ID: p.ID},
		UserID:  authorID,
		Title:   p.Title,
		Content: p.Content,
		Type:    p.Type,
		Status:  p.Status,
		Pinned:  p.Pinned,
	}
	if err := s.Repo.SaveAnnouncement(ctx, a); err != nil {
		return nil, service.FromRepo(err)
	}

	if s.Hub != nil && a.Status == models.StatusActive {
		if err := s.Hub.Broadcast(announce.EventAnnouncement, a); err != nil {
			logging.FromContext(ctx).Warn("announcement_push_failed", "id", a.ID, "error", err)
		}
	}
	return a, nil
}

func (s *SystemService) ReadAnnouncement(ctx context.Context, id string) error {
	return service.FromRepo(s.Repo.MarkAnnouncementRead(ctx, id))
}

func (s *SystemService) DeleteAnnouncement(ctx context.Context, id string) error {
	return service.FromRepo(s.Repo.DeleteAnnouncement(ctx, id))
}
