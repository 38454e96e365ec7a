package notifications

import (
	"context"
	"fmt"
)

// Service implements notification operations.
type Service struct {
	repo Repository
}

// NewService constructs the notification service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64, filters ListFilters) ([]Notification, int, error) {
	return s.repo.List(ctx, userID, filters)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Push records a notification for one user. Jobs and the document lifecycle
// call it, so failures wrap with enough context to trace the producer.
func (s *Service) Push(ctx context.Context, n Notification) error {
	if n.UserID == 0 {
		return fmt.Errorf("notifications: user required")
	}
	if n.Category == "" {
		n.Category = CategorySystem
	}
	if _, err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("push notification for user %d: %w", n.UserID, err)
	}
	return nil
}

// Broadcast records the same notification for several users.
func (s *Service) Broadcast(ctx context.Context, userIDs []int64, n Notification) error {
	for _, id := range userIDs {
		n.UserID = id
		if err := s.Push(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
