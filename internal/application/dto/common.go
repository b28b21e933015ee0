package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o negativos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP. Raw solo se rellena cuando la extracción IA falla
// y conserva el texto devuelto por el modelo.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Raw     string `json:"raw,omitempty"`
}

// Fail construye un ErrorResponse con success=false.
func Fail(code, message string) ErrorResponse {
	return ErrorResponse{Success: false, Code: code, Error: message}
}
