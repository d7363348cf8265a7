package models

import (
	"encoding/json"
	"time"
)

// San is a pooled rotating-savings group.
type San struct {
	ID                 int64     `json:"id"`
	Nombre             string    `json:"nombre"`
	Descripcion        string    `json:"descripcion"`
	PrecioCuota        Amount    `json:"precio_cuota"`
	PrecioTotal        Amount    `json:"precio_total"`
	NumeroCuotas       int       `json:"numero_cuotas"`
	Frecuencia         string    `json:"frecuencia"`
	Estado             string    `json:"estado"`
	FechaInicio        string    `json:"fecha_inicio"`
	FechaFin           string    `json:"fecha_fin"`
	Organizador        *User     `json:"organizador,omitempty"`
	ParticipantesCount int       `json:"participantes_count"`
	MaxParticipantes   int       `json:"max_participantes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SanParticipation is the caller's membership in a San.
type SanParticipation struct {
	ID               int64  `json:"id"`
	San              *San   `json:"san,omitempty"`
	Usuario          *User  `json:"usuario,omitempty"`
	OrdenCobro       int    `json:"orden_cobro"`
	CuotasPagadas    int    `json:"cuotas_pagadas"`
	FechaInscripcion string `json:"fecha_inscripcion"`
	Estado           string `json:"estado"`
}

// SanTurn is one slot of the payout rotation.
type SanTurn struct {
	ID                int64             `json:"id"`
	Participante      *SanParticipation `json:"participante,omitempty"`
	NumeroTurno       int               `json:"numero_turno"`
	MontoTurno        Amount            `json:"monto_turno"`
	Estado            string            `json:"estado"`
	FechaActivacion   string            `json:"fecha_activacion,omitempty"`
	FechaCumplimiento string            `json:"fecha_cumplimiento,omitempty"`
}

// Rifa is a raffle.
type Rifa struct {
	ID                 int64     `json:"id"`
	Titulo             string    `json:"titulo"`
	Descripcion        string    `json:"descripcion"`
	PrecioTicket       Amount    `json:"precio_ticket"`
	NumeroTickets      int       `json:"numero_tickets"`
	TicketsDisponibles int       `json:"tickets_disponibles"`
	Estado             string    `json:"estado"`
	FechaInicio        string    `json:"fecha_inicio"`
	FechaFin           string    `json:"fecha_fin"`
	Organizador        *User     `json:"organizador,omitempty"`
	Ganador            *User     `json:"ganador,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Ticket is a purchased raffle number.
type Ticket struct {
	ID           int64    `json:"id"`
	Rifa         *Rifa    `json:"rifa,omitempty"`
	Numero       int      `json:"numero"`
	PrecioPagado Amount   `json:"precio_pagado"`
	Estado       string   `json:"estado"`
	FechaCompra  string   `json:"fecha_compra"`
	Factura      *Invoice `json:"factura,omitempty"`
}

// Invoice (factura) is what a payment settles.
type Invoice struct {
	ID          int64  `json:"id"`
	Codigo      string `json:"codigo"`
	MontoTotal  Amount `json:"monto_total"`
	MontoPagado Amount `json:"monto_pagado"`
	EstadoPago  string `json:"estado_pago"`
	Tipo        string `json:"tipo"`
}

// Payment is a payment attempt for an invoice.
type Payment struct {
	ID                int64    `json:"id"`
	CodigoTransaccion string   `json:"codigo_transaccion"`
	Factura           *Invoice `json:"factura,omitempty"`
	MetodoPago        string   `json:"metodo_pago"`
	Monto             Amount   `json:"monto"`
	Moneda            string   `json:"moneda"`
	Estado            string   `json:"estado"`
	ReferenciaExterna string   `json:"referencia_externa,omitempty"`
	Intentos          int      `json:"intentos"`
	FechaCreacion     string   `json:"fecha_creacion"`
}

// Comment on a San or a Rifa.
type Comment struct {
	ID               int64     `json:"id"`
	Usuario          *User     `json:"usuario,omitempty"`
	Texto            string    `json:"texto"`
	FechaCreacion    string    `json:"fecha_creacion"`
	Activo           bool      `json:"activo"`
	Respuestas       []Comment `json:"respuestas,omitempty"`
	VotosPositivos   int       `json:"votos_positivos"`
	VotosNegativos   int       `json:"votos_negativos"`
	VotadoPorUsuario string    `json:"votado_por_usuario,omitempty"`
}

// Notification delivered to the user.
type Notification struct {
	ID               int64           `json:"id"`
	Titulo           string          `json:"titulo"`
	Mensaje          string          `json:"mensaje"`
	Tipo             string          `json:"tipo"`
	Canal            string          `json:"canal,omitempty"`
	Prioridad        string          `json:"prioridad,omitempty"`
	Leido            bool            `json:"leido"`
	FechaCreacion    time.Time       `json:"fecha_creacion"`
	FechaLectura     *time.Time      `json:"fecha_lectura,omitempty"`
	DatosAdicionales json.RawMessage `json:"datos_adicionales,omitempty"`
}

// Filters narrows San and Rifa listings. Zero values are not sent.
type Filters struct {
	Estado      string
	PrecioMin   float64
	PrecioMax   float64
	Frecuencia  string
	Organizador int64
}
