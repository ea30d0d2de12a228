package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// Error classification tags. Internal errors carry one of these; the
// boundary (HTTP handler, CLI) maps them to a stable user-facing message
// so raw upstream error text never leaks.
var (
	ErrTagInvalidInput       = goerr.NewTag("invalid_input")
	ErrTagInvalidCredentials = goerr.NewTag("invalid_credentials")
	ErrTagUpstreamFailure    = goerr.NewTag("upstream_failure")
	ErrTagInvalidFormat      = goerr.NewTag("invalid_format")
	ErrTagRenderingFailure   = goerr.NewTag("rendering_failure")
)

// User-facing messages, kept aligned with the product UI language
const (
	MsgInvalidInput       = "Geçerli ve yeterince detaylı bir metin girin (en az 10 karakter)"
	MsgInvalidCredentials = "Gemini API anahtarı geçersiz veya eksik. Lütfen GEMINI_API_KEY ayarını kontrol edin."
	MsgGenerateFailed     = "Diagram oluşturulamadı. Lütfen metni sadeleştirip tekrar deneyin."
	MsgRenderFallback     = "Diagram render edilemedi"
	MsgExportPNGFailed    = "PNG oluşturulamadı. Lütfen SVG indirmeyi deneyin veya diagramı küçültün."
	MsgExportSVGFailed    = "SVG indirme hatası"
)

// UserMessage maps an error to the message shown to the user. The
// credential case is distinguished from other upstream failures; anything
// unclassified falls back to the generic retry message.
func UserMessage(err error) string {
	switch {
	case goerr.HasTag(err, ErrTagInvalidInput):
		return MsgInvalidInput
	case goerr.HasTag(err, ErrTagInvalidCredentials):
		return MsgInvalidCredentials
	default:
		return MsgGenerateFailed
	}
}
