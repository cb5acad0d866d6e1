// Package directive parses gqlcompose directive comments.
//
// Two directives exist:
//
//	//gqlcompose:part
//	//gqlcompose:object [public|private] Name [<Context = TypeExpr>] (Part1, Part2, ...)
//
// The part directive must appear as the doc comment of a struct type
// declaration. The object directive may appear anywhere in the package.
package directive

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Prefix marks a comment line as a gqlcompose directive.
const Prefix = "gqlcompose:"

// Directive kinds.
const (
	KindPart   = "part"
	KindObject = "object"
)

// Visibility is the optional exposure qualifier of an object directive.
type Visibility int

const (
	// VisibilityDefault follows the case of the spelled composite name.
	VisibilityDefault Visibility = iota
	// VisibilityPublic forces the generated type name to be exported.
	VisibilityPublic
	// VisibilityPrivate forces the generated type name to be unexported.
	VisibilityPrivate
)

// Object is a parsed object directive.
type Object struct {
	Name       string
	Visibility Visibility
	Context    string // context override type expression, "" if absent
	Parts      []string
}

// SyntaxError reports a malformed directive, pointing at the offending token.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "invalid declaration: " + e.Reason
	}
	return fmt.Sprintf("invalid declaration: %s (at %q)", e.Reason, e.Token)
}

// Match reports whether the comment line carries a gqlcompose directive.
// The line is expected in raw form, including the leading "//". It returns
// the directive kind and the remaining text after the kind token.
func Match(line string) (kind, rest string, ok bool) {
	s := strings.TrimPrefix(line, "//")
	if !strings.HasPrefix(s, Prefix) {
		return "", "", false
	}
	s = strings.TrimPrefix(s, Prefix)
	kind = s
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		kind, rest = s[:i], strings.TrimSpace(s[i:])
	}
	return kind, rest, true
}

// ParsePart validates a part directive body. The part directive takes no
// arguments.
func ParsePart(rest string) error {
	if rest != "" {
		return &SyntaxError{Token: rest, Reason: "part directive takes no arguments"}
	}
	return nil
}

// ParseObject parses the body of an object directive.
func ParseObject(rest string) (*Object, error) {
	s := strings.TrimSpace(rest)
	if s == "" {
		return nil, &SyntaxError{Reason: "missing composite declaration"}
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return nil, &SyntaxError{Token: s, Reason: "missing part list"}
	}
	if !strings.HasSuffix(s, ")") {
		return nil, &SyntaxError{Token: s[open:], Reason: "missing closing parenthesis"}
	}
	head := strings.TrimSpace(s[:open])
	list := s[open+1 : len(s)-1]

	obj := &Object{}
	if i := strings.IndexByte(head, '<'); i >= 0 {
		clause := head[i:]
		if !strings.HasSuffix(clause, ">") {
			return nil, &SyntaxError{Token: clause, Reason: "unterminated context clause"}
		}
		inner := clause[1 : len(clause)-1]
		key, val, found := strings.Cut(inner, "=")
		if !found || strings.TrimSpace(key) != "Context" {
			return nil, &SyntaxError{Token: clause, Reason: "expected <Context = TypeExpr>"}
		}
		obj.Context = strings.TrimSpace(val)
		if obj.Context == "" {
			return nil, &SyntaxError{Token: clause, Reason: "empty context type"}
		}
		head = strings.TrimSpace(head[:i])
	}

	words := strings.Fields(head)
	switch len(words) {
	case 1:
		obj.Name = words[0]
	case 2:
		switch words[0] {
		case "public":
			obj.Visibility = VisibilityPublic
		case "private":
			obj.Visibility = VisibilityPrivate
		default:
			return nil, &SyntaxError{Token: words[0], Reason: "unknown visibility qualifier"}
		}
		obj.Name = words[1]
	default:
		return nil, &SyntaxError{Token: head, Reason: "expected [visibility] composite name"}
	}
	if !isIdent(obj.Name) {
		return nil, &SyntaxError{Token: obj.Name, Reason: "composite name is not a valid identifier"}
	}

	if strings.TrimSpace(list) == "" {
		return nil, &SyntaxError{Token: "()", Reason: "part list must name at least one part"}
	}
	for _, p := range strings.Split(list, ",") {
		p = strings.TrimSpace(p)
		if !isIdent(p) {
			return nil, &SyntaxError{Token: p, Reason: "part name is not a valid identifier"}
		}
		obj.Parts = append(obj.Parts, p)
	}
	return obj, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// Export applies the visibility qualifier to the spelled composite name.
func (o *Object) Export() string {
	r, size := utf8.DecodeRuneInString(o.Name)
	switch o.Visibility {
	case VisibilityPublic:
		return string(unicode.ToUpper(r)) + o.Name[size:]
	case VisibilityPrivate:
		return string(unicode.ToLower(r)) + o.Name[size:]
	}
	return o.Name
}
