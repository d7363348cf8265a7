package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/sanes/internal/client/client"
	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/client/repositories/notifications"
	"github.com/dmitrijs2005/sanes/internal/logging"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// SessionGuard is what the catalog needs from the session manager.
type SessionGuard interface {
	CurrentUser() *models.User
	HandleUnauthorized(ctx context.Context)
	Subscribe(fn func(Snapshot)) func()
}

// CatalogService exposes the SANes, raffle, payment, comment and notification
// endpoints to an authenticated user. A rejected token ends the session.
type CatalogService struct {
	api     client.CatalogAPI
	session SessionGuard
	inbox   notifications.Repository
	log     logging.Logger
	now     func() time.Time
}

func NewCatalogService(api client.CatalogAPI, sess SessionGuard, inbox notifications.Repository, log logging.Logger) *CatalogService {
	if log == nil {
		log = logging.NewNop()
	}
	return &CatalogService{
		api:     api,
		session: sess,
		inbox:   inbox,
		log:     log.With("component", "catalog"),
		now:     time.Now,
	}
}

// WatchSession drops the cached inbox whenever the session ends or another
// user logs in. The returned func stops watching.
func (s *CatalogService) WatchSession() func() {
	var lastUserID int64
	if u := s.session.CurrentUser(); u != nil {
		lastUserID = u.ID
	}

	return s.session.Subscribe(func(snap Snapshot) {
		var id int64
		if snap.CurrentUser != nil {
			id = snap.CurrentUser.ID
		}
		if lastUserID != 0 && id != lastUserID {
			ctx := context.Background()
			if err := s.inbox.Clear(ctx); err != nil {
				s.log.Warn(ctx, "failed to clear cached notifications", "error", err)
			}
		}
		lastUserID = id
	})
}

// guarded runs fn for an authenticated user and turns a 401 into a local
// logout.
func guarded[T any](ctx context.Context, s *CatalogService, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if s.session.CurrentUser() == nil {
		return zero, ErrNotAuthenticated
	}

	res, err := fn(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.session.HandleUnauthorized(ctx)
		}
		return zero, err
	}
	return res, nil
}

func guardedErr(ctx context.Context, s *CatalogService, fn func(ctx context.Context) error) error {
	_, err := guarded(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// SANes

func (s *CatalogService) Sanes(ctx context.Context, f models.Filters) (*models.Page[models.San], error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Page[models.San], error) {
		return s.api.ListSanes(ctx, f)
	})
}

func (s *CatalogService) San(ctx context.Context, id int64) (*models.San, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.San, error) {
		return s.api.GetSan(ctx, id)
	})
}

func (s *CatalogService) JoinSan(ctx context.Context, id int64) (*models.SanParticipation, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.SanParticipation, error) {
		return s.api.JoinSan(ctx, id)
	})
}

func (s *CatalogService) SanTurns(ctx context.Context, id int64) ([]models.SanTurn, error) {
	return guarded(ctx, s, func(ctx context.Context) ([]models.SanTurn, error) {
		return s.api.ListSanTurns(ctx, id)
	})
}

func (s *CatalogService) SanPayments(ctx context.Context, id int64) ([]models.Payment, error) {
	return guarded(ctx, s, func(ctx context.Context) ([]models.Payment, error) {
		return s.api.ListSanPayments(ctx, id)
	})
}

func (s *CatalogService) Participations(ctx context.Context) ([]models.SanParticipation, error) {
	return guarded(ctx, s, s.api.ListParticipations)
}

// Rifas

func (s *CatalogService) Rifas(ctx context.Context, f models.Filters) (*models.Page[models.Rifa], error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Page[models.Rifa], error) {
		return s.api.ListRifas(ctx, f)
	})
}

func (s *CatalogService) Rifa(ctx context.Context, id int64) (*models.Rifa, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Rifa, error) {
		return s.api.GetRifa(ctx, id)
	})
}

func (s *CatalogService) BuyTicket(ctx context.Context, rifaID int64, numero int) (*models.Ticket, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Ticket, error) {
		return s.api.BuyTicket(ctx, rifaID, numero)
	})
}

func (s *CatalogService) Tickets(ctx context.Context) ([]models.Ticket, error) {
	return guarded(ctx, s, s.api.ListTickets)
}

// Payments

func (s *CatalogService) Invoices(ctx context.Context) ([]models.Invoice, error) {
	return guarded(ctx, s, s.api.ListInvoices)
}

func (s *CatalogService) Pay(ctx context.Context, form models.PaymentForm) (*models.Payment, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Payment, error) {
		return s.api.CreatePayment(ctx, form)
	})
}

func (s *CatalogService) Payment(ctx context.Context, id int64) (*models.Payment, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Payment, error) {
		return s.api.GetPayment(ctx, id)
	})
}

// Comments

func (s *CatalogService) Comments(ctx context.Context, contentType string, id int64) ([]models.Comment, error) {
	return guarded(ctx, s, func(ctx context.Context) ([]models.Comment, error) {
		return s.api.ListComments(ctx, contentType, id)
	})
}

func (s *CatalogService) Comment(ctx context.Context, contentType string, id int64, form models.CommentForm) (*models.Comment, error) {
	return guarded(ctx, s, func(ctx context.Context) (*models.Comment, error) {
		return s.api.AddComment(ctx, contentType, id, form)
	})
}

func (s *CatalogService) DeleteComment(ctx context.Context, commentID int64) error {
	return guardedErr(ctx, s, func(ctx context.Context) error {
		return s.api.DeleteComment(ctx, commentID)
	})
}

// Notifications

// Notifications returns the inbox. When the server is unreachable the cached
// copy is returned with stale set.
func (s *CatalogService) Notifications(ctx context.Context) (items []models.Notification, stale bool, err error) {
	items, err = guarded(ctx, s, s.api.ListNotifications)
	if err == nil {
		if cerr := s.inbox.ReplaceAll(ctx, items); cerr != nil {
			s.log.Warn(ctx, "failed to cache notifications", "error", cerr)
		}
		return items, false, nil
	}

	if !errors.Is(err, client.ErrUnavailable) {
		return nil, false, err
	}

	cached, cerr := s.inbox.GetAll(ctx)
	if cerr != nil {
		s.log.Warn(ctx, "failed to read cached notifications", "error", cerr)
		return nil, false, err
	}
	s.log.Info(ctx, "server unavailable, serving cached notifications", "count", len(cached))
	return cached, true, nil
}

// UnreadCount counts unread notifications in the local cache.
func (s *CatalogService) UnreadCount(ctx context.Context) (int, error) {
	return s.inbox.CountUnread(ctx)
}

func (s *CatalogService) MarkNotificationRead(ctx context.Context, id int64) error {
	n, err := guarded(ctx, s, func(ctx context.Context) (*models.Notification, error) {
		return s.api.MarkNotificationRead(ctx, id)
	})
	if err != nil {
		return err
	}

	// the server answer wins when it carries the full record
	if n != nil && n.ID == id && n.Titulo != "" {
		err = s.inbox.Upsert(ctx, n)
	} else {
		err = s.inbox.MarkRead(ctx, id, s.now())
	}
	if err != nil {
		s.log.Warn(ctx, "failed to update cached notification", "id", id, "error", err)
	}
	return nil
}

func (s *CatalogService) MarkAllNotificationsRead(ctx context.Context) error {
	if err := guardedErr(ctx, s, s.api.MarkAllNotificationsRead); err != nil {
		return err
	}
	if err := s.inbox.MarkAllRead(ctx, s.now()); err != nil {
		s.log.Warn(ctx, "failed to update cached notifications", "error", err)
	}
	return nil
}
