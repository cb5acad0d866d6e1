package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gqlcompose/gqlcompose/internal/descriptor"
)

// Violations are positioned at the composite declaration; that is where the
// fix happens.

func violationUnknownPart(comp *descriptor.Composite, part string) *descriptor.Violation {
	return descriptor.NewViolation(descriptor.KindUnknownPart,
		fmt.Sprintf("unknown part %q in composite %q: no gqlcompose:part annotation found", part, comp.Name),
		comp.File, comp.Line, 0,
	)
}

func violationPartListedTwice(comp *descriptor.Composite, part string) *descriptor.Violation {
	return descriptor.NewViolation(descriptor.KindInvalidDeclaration,
		fmt.Sprintf("part %q listed more than once in composite %q", part, comp.Name),
		comp.File, comp.Line, 0,
	)
}

func violationDuplicateResolver(comp *descriptor.Composite, resolver, first, second string) *descriptor.Violation {
	return descriptor.NewViolation(descriptor.KindDuplicateResolver,
		fmt.Sprintf("duplicate resolver %q in composite %q: defined by both %s and %s", resolver, comp.Name, first, second),
		comp.File, comp.Line, 0,
	)
}

func violationContextMismatch(comp *descriptor.Composite, contexts map[string]string) *descriptor.Violation {
	parts := make([]string, 0, len(contexts))
	for part := range contexts {
		parts = append(parts, part)
	}
	sort.Strings(parts)
	var uses []string
	for _, part := range parts {
		uses = append(uses, fmt.Sprintf("%s uses %s", part, contexts[part]))
	}
	return descriptor.NewViolation(descriptor.KindContextMismatch,
		fmt.Sprintf("context type mismatch in composite %q: %s", comp.Name, strings.Join(uses, ", ")),
		comp.File, comp.Line, 0,
	)
}
