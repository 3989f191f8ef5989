package dto

// ErrorResponse cuerpo de error HTTP. Severity replica la notificación que vería el operador.
type ErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"`
}

// NoticeDTO notificación única que acompaña a cada paso.
type NoticeDTO struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}
