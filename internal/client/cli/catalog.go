package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/sanes/internal/client/client"
	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/client/services"
)

var getMultiline = GetMultiline

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// fail prints a human readable reason for err and returns it.
func (a *App) fail(err error) error {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		fmt.Fprintln(a.out, "Please log in first")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Session expired, please log in again")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.out, "Error:", apiErr.Message)
		if len(apiErr.Errors) > 0 {
			fmt.Fprintln(a.out, string(apiErr.Errors))
		}
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

// usage prints how to call a command and returns err.
func (a *App) usage(err error, text string) error {
	fmt.Fprintf(a.out, "%v\nUsage: %s\n", err, text)
	return err
}

// parseFilters reads name=value pairs such as estado=activo precio_max=50.
func parseFilters(args []string) (models.Filters, error) {
	var f models.Filters
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return f, fmt.Errorf("bad filter %q", arg)
		}
		var err error
		switch name {
		case "estado":
			f.Estado = value
		case "frecuencia":
			f.Frecuencia = value
		case "precio_min":
			f.PrecioMin, err = strconv.ParseFloat(value, 64)
		case "precio_max":
			f.PrecioMax, err = strconv.ParseFloat(value, 64)
		case "organizador":
			f.Organizador, err = strconv.ParseInt(value, 10, 64)
		default:
			return f, fmt.Errorf("unknown filter %q", name)
		}
		if err != nil {
			return f, fmt.Errorf("bad filter %q: %w", arg, err)
		}
	}
	return f, nil
}

func userName(u *models.User) string {
	if u == nil {
		return "-"
	}
	return u.Username
}

// SANes

func (a *App) Sanes(ctx context.Context, args []string) error {
	f, err := parseFilters(args)
	if err != nil {
		return a.usage(err, "sanes [estado=..] [frecuencia=..] [precio_min=..] [precio_max=..] [organizador=..]")
	}
	page, err := a.catalog.Sanes(ctx, f)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNOMBRE\tCUOTA\tFRECUENCIA\tESTADO\tPARTICIPANTES")
	for _, s := range page.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d/%d\n",
			s.ID, s.Nombre, money(s.PrecioCuota), label(s.Frecuencia), label(s.Estado), s.ParticipantesCount, s.MaxParticipantes)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d\n", len(page.Results), page.Count)
	return nil
}

func (a *App) San(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "san id")
	if err != nil {
		return a.usage(err, "san <id>")
	}
	s, err := a.catalog.San(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintf(w, "ID\t%d\n", s.ID)
	fmt.Fprintf(w, "Nombre\t%s\n", s.Nombre)
	fmt.Fprintf(w, "Descripcion\t%s\n", s.Descripcion)
	fmt.Fprintf(w, "Cuota\t%s x %d\n", money(s.PrecioCuota), s.NumeroCuotas)
	fmt.Fprintf(w, "Total\t%s\n", money(s.PrecioTotal))
	fmt.Fprintf(w, "Frecuencia\t%s\n", label(s.Frecuencia))
	fmt.Fprintf(w, "Estado\t%s\n", label(s.Estado))
	fmt.Fprintf(w, "Fechas\t%s - %s\n", s.FechaInicio, s.FechaFin)
	fmt.Fprintf(w, "Organizador\t%s\n", userName(s.Organizador))
	fmt.Fprintf(w, "Participantes\t%d/%d\n", s.ParticipantesCount, s.MaxParticipantes)
	return w.Flush()
}

func (a *App) JoinSan(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "san id")
	if err != nil {
		return a.usage(err, "join <san id>")
	}
	p, err := a.catalog.JoinSan(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Joined, your turn is #%d\n", p.OrdenCobro)
	return nil
}

func (a *App) SanTurns(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "san id")
	if err != nil {
		return a.usage(err, "turns <san id>")
	}
	turns, err := a.catalog.SanTurns(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "TURNO\tMONTO\tESTADO\tPARTICIPANTE")
	for _, t := range turns {
		var who *models.User
		if t.Participante != nil {
			who = t.Participante.Usuario
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.NumeroTurno, money(t.MontoTurno), label(t.Estado), userName(who))
	}
	return w.Flush()
}

func (a *App) SanPayments(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "san id")
	if err != nil {
		return a.usage(err, "sanpayments <san id>")
	}
	payments, err := a.catalog.SanPayments(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	return a.printPayments(payments)
}

func (a *App) Participations(ctx context.Context) error {
	items, err := a.catalog.Participations(ctx)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "SAN\tNOMBRE\tTURNO\tCUOTAS PAGADAS\tESTADO")
	for _, p := range items {
		var (
			sanID  int64
			nombre string
		)
		if p.San != nil {
			sanID, nombre = p.San.ID, p.San.Nombre
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", sanID, nombre, p.OrdenCobro, p.CuotasPagadas, label(p.Estado))
	}
	return w.Flush()
}

// Rifas

func (a *App) Rifas(ctx context.Context, args []string) error {
	f, err := parseFilters(args)
	if err != nil {
		return a.usage(err, "rifas [estado=..] [precio_min=..] [precio_max=..] [organizador=..]")
	}
	page, err := a.catalog.Rifas(ctx, f)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tTITULO\tPRECIO\tDISPONIBLES\tESTADO")
	for _, r := range page.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%s\n",
			r.ID, r.Titulo, money(r.PrecioTicket), r.TicketsDisponibles, r.NumeroTickets, label(r.Estado))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d\n", len(page.Results), page.Count)
	return nil
}

func (a *App) Rifa(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "rifa id")
	if err != nil {
		return a.usage(err, "rifa <id>")
	}
	r, err := a.catalog.Rifa(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintf(w, "ID\t%d\n", r.ID)
	fmt.Fprintf(w, "Titulo\t%s\n", r.Titulo)
	fmt.Fprintf(w, "Descripcion\t%s\n", r.Descripcion)
	fmt.Fprintf(w, "Precio\t%s\n", money(r.PrecioTicket))
	fmt.Fprintf(w, "Disponibles\t%d/%d\n", r.TicketsDisponibles, r.NumeroTickets)
	fmt.Fprintf(w, "Estado\t%s\n", label(r.Estado))
	fmt.Fprintf(w, "Fechas\t%s - %s\n", r.FechaInicio, r.FechaFin)
	fmt.Fprintf(w, "Organizador\t%s\n", userName(r.Organizador))
	if r.Ganador != nil {
		fmt.Fprintf(w, "Ganador\t%s\n", r.Ganador.Username)
	}
	return w.Flush()
}

func (a *App) BuyTicket(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "rifa id")
	if err != nil {
		return a.usage(err, "buy <rifa id> <numero>")
	}
	numero, err := parseID(args, 1, "ticket number")
	if err != nil {
		return a.usage(err, "buy <rifa id> <numero>")
	}
	t, err := a.catalog.BuyTicket(ctx, id, int(numero))
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Ticket #%d bought for %s\n", t.Numero, money(t.PrecioPagado))
	if t.Factura != nil {
		if t.Factura.Codigo != "" {
			fmt.Fprintf(a.out, "Invoice %d (%s) is %s\n", t.Factura.ID, t.Factura.Codigo, label(t.Factura.EstadoPago))
		} else {
			fmt.Fprintf(a.out, "Invoice %d created, see invoices\n", t.Factura.ID)
		}
	}
	return nil
}

func (a *App) Tickets(ctx context.Context) error {
	tickets, err := a.catalog.Tickets(ctx)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tRIFA\tNUMERO\tPRECIO\tESTADO")
	for _, t := range tickets {
		rifa := "-"
		if t.Rifa != nil {
			rifa = t.Rifa.Titulo
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", t.ID, rifa, t.Numero, money(t.PrecioPagado), label(t.Estado))
	}
	return w.Flush()
}

// Payments

func (a *App) Invoices(ctx context.Context) error {
	invoices, err := a.catalog.Invoices(ctx)
	if err != nil {
		return a.fail(err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tCODIGO\tTIPO\tTOTAL\tPAGADO\tESTADO")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Codigo, label(inv.Tipo), money(inv.MontoTotal), money(inv.MontoPagado), label(inv.EstadoPago))
	}
	return w.Flush()
}

func (a *App) Pay(ctx context.Context, args []string) error {
	const help = "pay <invoice id> <method> [external reference]"
	id, err := parseID(args, 0, "invoice id")
	if err != nil {
		return a.usage(err, help)
	}
	if len(args) < 2 {
		return a.usage(errors.New("missing payment method"), help)
	}
	form := models.PaymentForm{FacturaID: id, MetodoPago: args[1]}
	if len(args) > 2 {
		form.ReferenciaExterna = args[2]
	}

	p, err := a.catalog.Pay(ctx, form)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Payment %d (%s): %s\n", p.ID, p.CodigoTransaccion, label(p.Estado))
	return nil
}

func (a *App) Payment(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "payment id")
	if err != nil {
		return a.usage(err, "payment <id>")
	}
	p, err := a.catalog.Payment(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	return a.printPayments([]models.Payment{*p})
}

func (a *App) printPayments(payments []models.Payment) error {
	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tTRANSACCION\tMETODO\tMONTO\tESTADO\tFECHA")
	for _, p := range payments {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s %s\t%s\t%s\n",
			p.ID, p.CodigoTransaccion, label(p.MetodoPago), money(p.Monto), p.Moneda, label(p.Estado), p.FechaCreacion)
	}
	return w.Flush()
}

// Comments

func parseTarget(args []string) (string, int64, error) {
	if len(args) == 0 {
		return "", 0, errors.New("missing target type")
	}
	kind := args[0]
	if kind != "san" && kind != "rifa" {
		return "", 0, fmt.Errorf("unknown target type %q", kind)
	}
	id, err := parseID(args, 1, kind+" id")
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func (a *App) Comments(ctx context.Context, args []string) error {
	kind, id, err := parseTarget(args)
	if err != nil {
		return a.usage(err, "comments <san|rifa> <id>")
	}
	comments, err := a.catalog.Comments(ctx, kind, id)
	if err != nil {
		return a.fail(err)
	}
	if len(comments) == 0 {
		fmt.Fprintln(a.out, "No comments yet")
		return nil
	}
	for _, c := range comments {
		a.printComment(c, 0)
	}
	return nil
}

func (a *App) printComment(c models.Comment, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(a.out, "%s[%d] %s (+%d/-%d): %s\n",
		indent, c.ID, userName(c.Usuario), c.VotosPositivos, c.VotosNegativos, c.Texto)
	for _, r := range c.Respuestas {
		a.printComment(r, depth+1)
	}
}

func (a *App) Comment(ctx context.Context, args []string) error {
	const help = "comment <san|rifa> <id> [reply-to comment id]"
	kind, id, err := parseTarget(args)
	if err != nil {
		return a.usage(err, help)
	}
	var form models.CommentForm
	if len(args) > 2 {
		parent, err := parseID(args, 2, "comment id")
		if err != nil {
			return a.usage(err, help)
		}
		form.ComentarioPadre = &parent
	}

	text, err := getMultiline(a.reader, "Enter comment text", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(a.out, "Empty comment, nothing sent")
		return nil
	}
	form.Texto = text

	c, err := a.catalog.Comment(ctx, kind, id, form)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Comment %d added\n", c.ID)
	return nil
}

func (a *App) DeleteComment(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "comment id")
	if err != nil {
		return a.usage(err, "delcomment <comment id>")
	}
	if err := a.catalog.DeleteComment(ctx, id); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Comment deleted")
	return nil
}

// Notifications

func (a *App) Notifications(ctx context.Context) error {
	items, stale, err := a.catalog.Notifications(ctx)
	if err != nil {
		return a.fail(err)
	}
	if stale {
		fmt.Fprintln(a.out, "Server unavailable, showing cached notifications")
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\t\tFECHA\tTITULO\tMENSAJE")
	for _, n := range items {
		mark := "*"
		if n.Leido {
			mark = ""
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			n.ID, mark, n.FechaCreacion.Local().Format("2006-01-02 15:04"), n.Titulo, n.Mensaje)
	}
	return w.Flush()
}

func (a *App) MarkRead(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "notification id")
	if err != nil {
		return a.usage(err, "read <notification id>")
	}
	if err := a.catalog.MarkNotificationRead(ctx, id); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *App) MarkAllRead(ctx context.Context) error {
	if err := a.catalog.MarkAllNotificationsRead(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "All notifications marked as read")
	return nil
}

// unreadCount is best effort; it reads the local cache only.
func (a *App) unreadCount(ctx context.Context) int {
	n, err := a.catalog.UnreadCount(ctx)
	if err != nil {
		return 0
	}
	return n
}
