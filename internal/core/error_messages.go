package core

// error_messages.go maps technical errors to messages shown on the page.
//
// Codes are quoted by users to support staff:
//
//	FMT001  - Invalid format: format is not code128, ean13 or ean14 (export also accepts both)
//	FILE001 - File too large: the upload exceeds the configured maximum size
//	FILE004 - No file: the import form was submitted without a file
//	FILE006 - No worksheet: the workbook has no sheet to read
//	FILE007 - Unreadable spreadsheet: the upload is not a valid xlsx workbook
//	JOB001  - System busy: every import/export slot is taken
//	JOB002  - Request cancelled or timed out
//	ERR000  - Anything else; check the logs for the technical error

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorMatch matches a sentinel error first and falls back to a substring
// of the lower-cased error text.
type errorMatch struct {
	target  error
	pattern string
	msg     UserMessage
}

// First match wins.
var errorMatches = []errorMatch{
	{
		target: ErrInvalidFormat,
		msg: UserMessage{
			Message: "Formato inválido. Escolha entre code128, ean13 ou ean14.",
			Action:  "Selecione um formato válido e tente novamente",
			Code:    "FMT001",
		},
	},
	{
		target: ErrNoFile,
		msg: UserMessage{
			Message: "Nenhum arquivo enviado.",
			Action:  "Selecione uma planilha antes de importar",
			Code:    "FILE004",
		},
	},
	{
		target: ErrFileTooLarge,
		msg: UserMessage{
			Message: "Arquivo muito grande.",
			Action:  "Divida a planilha em arquivos menores",
			Code:    "FILE001",
		},
	},
	{
		target: ErrNoWorksheet,
		msg: UserMessage{
			Message: "Planilha não encontrada.",
			Action:  "Verifique se o arquivo possui ao menos uma planilha",
			Code:    "FILE006",
		},
	},
	{
		pattern: "zip: not a valid zip file",
		msg: UserMessage{
			Message: "Erro ao importar dados do Excel",
			Action:  "Envie um arquivo .xlsx válido",
			Code:    "FILE007",
		},
	},
	{
		target: ErrTooManyJobs,
		msg: UserMessage{
			Message: "O sistema está ocupado processando outras planilhas",
			Action:  "Aguarde um momento e tente novamente",
			Code:    "JOB001",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "A requisição foi cancelada",
			Action:  "Tente novamente",
			Code:    "JOB002",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "A requisição expirou",
			Action:  "Tente novamente com uma planilha menor",
			Code:    "JOB002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocorreu um erro inesperado",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, m := range errorMatches {
		if m.target != nil && errors.Is(err, m.target) {
			return m.msg
		}
		if m.pattern != "" && strings.Contains(errStr, m.pattern) {
			return m.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
