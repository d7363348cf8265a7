package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/sanes/internal/client/models"
)

func filterQuery(f models.Filters) url.Values {
	q := url.Values{}
	if f.Estado != "" {
		q.Set("estado", f.Estado)
	}
	if f.PrecioMin > 0 {
		q.Set("precio_min", strconv.FormatFloat(f.PrecioMin, 'f', -1, 64))
	}
	if f.PrecioMax > 0 {
		q.Set("precio_max", strconv.FormatFloat(f.PrecioMax, 'f', -1, 64))
	}
	if f.Frecuencia != "" {
		q.Set("frecuencia", f.Frecuencia)
	}
	if f.Organizador > 0 {
		q.Set("organizador", strconv.FormatInt(f.Organizador, 10))
	}
	return q
}

// get decodes an authenticated GET of path into out.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any, failMsg string) error {
	err := c.call(ctx, request{method: http.MethodGet, path: path, query: query, auth: true}, out)
	return withDefaultMessage(err, failMsg)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body, out any, failMsg string) error {
	err := c.call(ctx, request{method: method, path: path, body: body, auth: true}, out)
	return withDefaultMessage(err, failMsg)
}

// SANes

func (c *HTTPClient) ListSanes(ctx context.Context, f models.Filters) (*models.Page[models.San], error) {
	return getPage[models.San](ctx, c, "/api/sanes/", filterQuery(f), "Error al obtener SANes")
}

func (c *HTTPClient) GetSan(ctx context.Context, id int64) (*models.San, error) {
	var s models.San
	if err := c.get(ctx, fmt.Sprintf("/api/sanes/%d/", id), nil, &s, "Error al obtener detalle del SAN"); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) JoinSan(ctx context.Context, id int64) (*models.SanParticipation, error) {
	var p models.SanParticipation
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/sanes/%d/join/", id), nil, &p, "Error al unirse al SAN"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListSanTurns(ctx context.Context, id int64) ([]models.SanTurn, error) {
	return getList[models.SanTurn](ctx, c, fmt.Sprintf("/api/sanes/%d/turns/", id), "Error al obtener turnos del SAN")
}

func (c *HTTPClient) ListSanPayments(ctx context.Context, id int64) ([]models.Payment, error) {
	return getList[models.Payment](ctx, c, fmt.Sprintf("/api/sanes/%d/payments/", id), "Error al obtener pagos del SAN")
}

func (c *HTTPClient) ListParticipations(ctx context.Context) ([]models.SanParticipation, error) {
	return getList[models.SanParticipation](ctx, c, "/api/user/participations/", "Error al obtener participaciones del usuario")
}

// Rifas

func (c *HTTPClient) ListRifas(ctx context.Context, f models.Filters) (*models.Page[models.Rifa], error) {
	// raffles have no frequency
	f.Frecuencia = ""
	return getPage[models.Rifa](ctx, c, "/api/rifas/", filterQuery(f), "Error al obtener rifas")
}

func (c *HTTPClient) GetRifa(ctx context.Context, id int64) (*models.Rifa, error) {
	var r models.Rifa
	if err := c.get(ctx, fmt.Sprintf("/api/rifas/%d/", id), nil, &r, "Error al obtener detalle de la rifa"); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) BuyTicket(ctx context.Context, rifaID int64, numero int) (*models.Ticket, error) {
	body := map[string]int{"numero": numero}
	var t models.Ticket
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/rifas/%d/buy-ticket/", rifaID), body, &t, "Error al comprar ticket"); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	return getList[models.Ticket](ctx, c, "/api/user/tickets/", "Error al obtener tickets del usuario")
}

// Payments

func (c *HTTPClient) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return getList[models.Invoice](ctx, c, "/api/user/facturas/", "Error al obtener facturas del usuario")
}

func (c *HTTPClient) CreatePayment(ctx context.Context, form models.PaymentForm) (*models.Payment, error) {
	var p models.Payment
	if err := c.send(ctx, http.MethodPost, "/api/payments/create/", form, &p, "Error al crear pago"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	var p models.Payment
	if err := c.get(ctx, fmt.Sprintf("/api/payments/%d/", id), nil, &p, "Error al obtener estado del pago"); err != nil {
		return nil, err
	}
	return &p, nil
}

// Comments

func commentsPath(contentType string, id int64) string {
	return fmt.Sprintf("/api/comments/%s/%d/", url.PathEscape(contentType), id)
}

func (c *HTTPClient) ListComments(ctx context.Context, contentType string, id int64) ([]models.Comment, error) {
	return getList[models.Comment](ctx, c, commentsPath(contentType, id), "Error al obtener comentarios")
}

func (c *HTTPClient) AddComment(ctx context.Context, contentType string, id int64, form models.CommentForm) (*models.Comment, error) {
	var cm models.Comment
	if err := c.send(ctx, http.MethodPost, commentsPath(contentType, id), form, &cm, "Error al agregar comentario"); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *HTTPClient) DeleteComment(ctx context.Context, commentID int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/comments/%d/", commentID), nil, nil, "Error al eliminar comentario")
}

// Notifications

func (c *HTTPClient) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	return getList[models.Notification](ctx, c, "/api/notifications/", "Error al obtener notificaciones")
}

func (c *HTTPClient) MarkNotificationRead(ctx context.Context, id int64) (*models.Notification, error) {
	var n models.Notification
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/mark-read/", id), nil, &n, "Error al marcar notificación como leída"); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *HTTPClient) MarkAllNotificationsRead(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/api/notifications/mark-all-read/", nil, nil, "Error al marcar todas las notificaciones como leídas")
}
