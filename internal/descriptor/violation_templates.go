package descriptor

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Common reusable violation constructors (template helpers)
// NOTE: Keep messages stable to avoid breaking snapshot tests.

func violationBadDirective(reason string, pos token.Position) *Violation {
	return violationAt(KindInvalidDeclaration, reason, pos)
}

func violationOrphanPartDirective(pos token.Position) *Violation {
	return violationAt(KindInvalidDeclaration,
		"gqlcompose:part directive must immediately precede a type declaration",
		pos,
	)
}

func violationPartNotStruct(name string, pos token.Position) *Violation {
	return violationAt(KindInvalidDeclaration,
		fmt.Sprintf("part %q must be a struct type", name),
		pos,
	)
}

func violationPartHasFields(name string, pos token.Position) *Violation {
	return violationAt(KindInvalidDeclaration,
		fmt.Sprintf("part %q must not declare fields; resolver state belongs in the context", name),
		pos,
	)
}

func violationDuplicatePart(name string, pos token.Position) *Violation {
	return violationAt(KindInvalidDeclaration,
		fmt.Sprintf("part %q annotated more than once", name),
		pos,
	)
}

func violationVariadicResolver(part, method string, pos token.Position) *Violation {
	return violationAt(KindInvalidDeclaration,
		fmt.Sprintf("resolver %s.%s must not be variadic", part, method),
		pos,
	)
}

func violationPartContextAmbiguous(part string, contexts map[string]string, pos token.Position) *Violation {
	methods := make([]string, 0, len(contexts))
	for m := range contexts {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	var uses []string
	for _, m := range methods {
		uses = append(uses, fmt.Sprintf("%s uses %s", m, contexts[m]))
	}
	return violationAt(KindContextMismatch,
		fmt.Sprintf("part %q resolvers disagree on context type: %s", part, strings.Join(uses, ", ")),
		pos,
	)
}

func violationDuplicateComposite(name string, pos token.Position) *Violation {
	return violationAt(KindDuplicateComposite,
		fmt.Sprintf("composite %q declared more than once in package", name),
		pos,
	)
}

func violationCompositeShadowsType(name string, pos token.Position) *Violation {
	return violationAt(KindDuplicateComposite,
		fmt.Sprintf("composite %q collides with a type declared in the package", name),
		pos,
	)
}
