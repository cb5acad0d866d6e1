package gqlcompose

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownPartError reports a composition referencing a part that was never
// registered.
type UnknownPartError struct {
	Part string
}

func (e *UnknownPartError) Error() string {
	return fmt.Sprintf("unknown part %q: part was never registered", e.Part)
}

// DuplicateResolverError reports two parts contributing a resolver of the
// same name to one composite.
type DuplicateResolverError struct {
	Resolver string
	// First and Second are the contributing parts, in composition order.
	First  string
	Second string
}

func (e *DuplicateResolverError) Error() string {
	return fmt.Sprintf("duplicate resolver %q: defined by both %s and %s", e.Resolver, e.First, e.Second)
}

// ContextMismatchError reports parts that disagree on the context type.
type ContextMismatchError struct {
	// Contexts maps each conflicting part to its context type name.
	Contexts map[string]string
}

func (e *ContextMismatchError) Error() string {
	parts := make([]string, 0, len(e.Contexts))
	for part := range e.Contexts {
		parts = append(parts, part)
	}
	sort.Strings(parts)
	uses := make([]string, 0, len(parts))
	for _, part := range parts {
		uses = append(uses, fmt.Sprintf("%s uses %s", part, e.Contexts[part]))
	}
	return "context type mismatch: " + strings.Join(uses, ", ")
}

// InvalidDeclarationError reports a part or composition declaration that
// violates the part contract.
type InvalidDeclarationError struct {
	Reason string
}

func (e *InvalidDeclarationError) Error() string {
	return "invalid declaration: " + e.Reason
}
