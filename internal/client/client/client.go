package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/sanes/internal/client/models"
)

// SessionAPI is the remote side of the session lifecycle.
type SessionAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	FetchProfile(ctx context.Context) (*models.User, error)
	// UpdateProfile returns the user object exactly as confirmed by the server,
	// so callers can merge only the fields it sent back.
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (json.RawMessage, error)
}

// CatalogAPI covers the authenticated SANes, raffle, payment, comment and
// notification endpoints.
type CatalogAPI interface {
	ListSanes(ctx context.Context, f models.Filters) (*models.Page[models.San], error)
	GetSan(ctx context.Context, id int64) (*models.San, error)
	JoinSan(ctx context.Context, id int64) (*models.SanParticipation, error)
	ListSanTurns(ctx context.Context, id int64) ([]models.SanTurn, error)
	ListSanPayments(ctx context.Context, id int64) ([]models.Payment, error)
	ListParticipations(ctx context.Context) ([]models.SanParticipation, error)

	ListRifas(ctx context.Context, f models.Filters) (*models.Page[models.Rifa], error)
	GetRifa(ctx context.Context, id int64) (*models.Rifa, error)
	BuyTicket(ctx context.Context, rifaID int64, numero int) (*models.Ticket, error)
	ListTickets(ctx context.Context) ([]models.Ticket, error)

	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	CreatePayment(ctx context.Context, form models.PaymentForm) (*models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)

	ListComments(ctx context.Context, contentType string, id int64) ([]models.Comment, error)
	AddComment(ctx context.Context, contentType string, id int64, form models.CommentForm) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error

	ListNotifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (*models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
}

// Client is the full backend contract.
type Client interface {
	SessionAPI
	CatalogAPI
}

// TokenStore is the part of the persisted session the transport needs: the
// token to attach and a way to drop the session on 401.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
