package descriptor

import (
	"fmt"
	"go/token"
)

// Kind classifies a violation. Any violation is fatal to the run.
type Kind string

const (
	KindInvalidDeclaration Kind = "InvalidDeclaration"
	KindUnknownPart        Kind = "UnknownPart"
	KindContextMismatch    Kind = "ContextMismatch"
	KindDuplicateResolver  Kind = "DuplicateResolver"
	KindDuplicateComposite Kind = "DuplicateComposite"
	KindSchemaMismatch     Kind = "SchemaMismatch"
)

type Violation struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		line := "- " + v.Message
		if v.File != "" {
			line += fmt.Sprintf(" %s:%d:%d", v.File, v.Line, v.Column)
		}
		msg += line + "\n"
	}
	return msg
}

// Core primitive used by all template helpers.
func violationAt(kind Kind, message string, pos token.Position) *Violation {
	return &Violation{
		Kind:    kind,
		Message: message,
		File:    pos.Filename,
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

// NewViolation constructs a violation for callers outside the scan pass
// (merge and schema checks) that carry descriptor positions.
func NewViolation(kind Kind, message, file string, line, column int) *Violation {
	return &Violation{Kind: kind, Message: message, File: file, Line: line, Column: column}
}
