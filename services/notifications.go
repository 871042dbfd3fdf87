package services

import (
	"context"
	"sync"

	"barberbook-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const notificationPageSize = 20

// Hub fans newly created notifications out to live subscribers of the
// recipient. Slow subscribers miss events rather than block publishers;
// they can always reload the list.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan models.Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[chan models.Notification]struct{})}
}

// Subscribe registers a listener for userID. The returned cancel func
// closes the channel; subscribing again afterwards starts a fresh stream.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan models.Notification, func()) {
	ch := make(chan models.Notification, 16)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan models.Notification]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(n models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[n.UserID] {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

type NotificationService struct {
	db  *gorm.DB
	hub *Hub
}

func NewNotificationService(db *gorm.DB, hub *Hub) *NotificationService {
	if hub == nil {
		hub = NewHub()
	}
	return &NotificationService{db: db, hub: hub}
}

func (s *NotificationService) Hub() *Hub { return s.hub }

// Create stores n and pushes it to the recipient's live subscribers.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return &PersistenceError{Op: "create notification", Err: err}
	}
	s.hub.Publish(*n)
	return nil
}

// List returns the latest notifications of userID, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	var list []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(notificationPageSize).
		Find(&list).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list notifications", Err: err}
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, &PersistenceError{Op: "count notifications", Err: err}
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return &PersistenceError{Op: "mark notification read", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return &PersistenceError{Op: "mark notifications read", Err: err}
	}
	return nil
}
