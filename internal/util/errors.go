package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy shared by the core services. Handlers translate these
// into the HTTP envelope; services never touch gin.
var (
	// ErrNotFound covers both absent records and records owned by someone
	// else, so existence is never leaked across owners.
	ErrNotFound = errors.New("registro nao encontrado")
	// ErrInvalidGroup means the operation requires an installment group
	// the target payable does not have.
	ErrInvalidGroup = errors.New("conta nao pertence a um grupo de parcelamento")
	// ErrConflict marks deletes blocked by referential protection.
	ErrConflict = errors.New("operacao bloqueada por registros vinculados")
)

// ValidationError carries field-scoped messages. All validation happens
// before any mutation starts.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{Fields: map[string][]string{}}
	e.Add(field, message)
	return e
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validacao: " + strings.Join(parts, " | ")
}
