package models

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request body. On this backend a successful
// registration also authenticates the new user.
type Registration struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password1   string `json:"password1"`
	Password2   string `json:"password2"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Cedula      string `json:"cedula,omitempty"`
	Oficio      string `json:"oficio,omitempty"`
}

// ProfilePatch carries the editable profile fields. Nil fields are not sent.
type ProfilePatch struct {
	Email       *string `json:"email,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Cedula      *string `json:"cedula,omitempty"`
	Oficio      *string `json:"oficio,omitempty"`
	FotoPerfil  *string `json:"foto_perfil,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p ProfilePatch) IsEmpty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil &&
		p.PhoneNumber == nil && p.Cedula == nil && p.Oficio == nil && p.FotoPerfil == nil
}

// AuthResult is the data part of a successful login or register response.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CommentForm is the body for adding a comment or a reply.
type CommentForm struct {
	Texto           string `json:"texto"`
	ComentarioPadre *int64 `json:"comentario_padre,omitempty"`
}

// PaymentForm is the body for paying an invoice.
type PaymentForm struct {
	FacturaID         int64  `json:"factura_id"`
	MetodoPago        string `json:"metodo_pago"`
	ReferenciaExterna string `json:"referencia_externa,omitempty"`
}
