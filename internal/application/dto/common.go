package dto

// Tamaños de página para listados (productos, clientes, documentos).
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest parámetros de paginación leídos del query string.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize aplica defaults y acota el tamaño de página al máximo permitido.
func (p *PageRequest) Normalize() {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse eco de la paginación aplicada, para que el cliente pueda pedir
// la página siguiente sin recalcular nada.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo uniforme de error de la API: un código estable para
// programar contra él y un mensaje legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
