package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/client/services"
)

// SessionService is the part of services.SessionManager the CLI drives.
type SessionService interface {
	Snapshot() services.Snapshot
	CurrentUser() *models.User
	LastError() error
	Login(ctx context.Context, creds models.Credentials) bool
	Register(ctx context.Context, reg models.Registration) bool
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, patch models.ProfilePatch) bool
}

// CatalogService is the part of services.CatalogService the CLI drives.
type CatalogService interface {
	Sanes(ctx context.Context, f models.Filters) (*models.Page[models.San], error)
	San(ctx context.Context, id int64) (*models.San, error)
	JoinSan(ctx context.Context, id int64) (*models.SanParticipation, error)
	SanTurns(ctx context.Context, id int64) ([]models.SanTurn, error)
	SanPayments(ctx context.Context, id int64) ([]models.Payment, error)
	Participations(ctx context.Context) ([]models.SanParticipation, error)
	Rifas(ctx context.Context, f models.Filters) (*models.Page[models.Rifa], error)
	Rifa(ctx context.Context, id int64) (*models.Rifa, error)
	BuyTicket(ctx context.Context, rifaID int64, numero int) (*models.Ticket, error)
	Tickets(ctx context.Context) ([]models.Ticket, error)
	Invoices(ctx context.Context) ([]models.Invoice, error)
	Pay(ctx context.Context, form models.PaymentForm) (*models.Payment, error)
	Payment(ctx context.Context, id int64) (*models.Payment, error)
	Comments(ctx context.Context, contentType string, id int64) ([]models.Comment, error)
	Comment(ctx context.Context, contentType string, id int64, form models.CommentForm) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	Notifications(ctx context.Context) ([]models.Notification, bool, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
}

type App struct {
	session SessionService
	catalog CatalogService
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp builds an App reading from stdin and printing to stdout.
func NewApp(session SessionService, catalog CatalogService) *App {
	return &App{
		session: session,
		catalog: catalog,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// Run starts the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to SANes y Rifas CLI (type 'help' for commands)")
	if u := a.session.CurrentUser(); u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", u.FullName())
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser() != nil
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	s := ""
	if snap.CurrentUser != nil {
		s = snap.CurrentUser.Username
		if n := a.unreadCount(context.Background()); n > 0 {
			s += fmt.Sprintf(" %d unread", n)
		}
	}
	if snap.IsLoading {
		if s != "" {
			s += " "
		}
		s += "loading"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// reportFailure prints the cause of the last failed session operation.
func (a *App) reportFailure(what string) error {
	err := a.session.LastError()
	if err == nil {
		err = fmt.Errorf("%s failed", what)
	}
	fmt.Fprintf(a.out, "%s failed: %v\n", what, err)
	return err
}
