package model

import "errors"

var (
	// ErrInvalidInput se devuelve cuando el llamador envía valores fuera de dominio
	ErrInvalidInput = errors.New("invalid input")
	// ErrSequencerUnavailable se devuelve cuando el almacén no logra confirmar el contador
	ErrSequencerUnavailable = errors.New("quotation sequencer unavailable")
	ErrQuotationNotFound    = errors.New("quotation not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
