package jsonval

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer addresses a location inside a value tree as a sequence of
// reference tokens, one per object key or array index, following the
// JSON Pointer syntax (RFC 6901) in its string form. The empty Pointer
// addresses the document root.
type Pointer []string

// Root is the pointer to the whole document.
var Root = Pointer{}

// ParsePointer parses the string form. "" is the root; every other pointer
// must start with '/'.
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Root, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("pointer %q must start with '/'", s)
	}
	parts := strings.Split(s[1:], "/")
	p := make(Pointer, len(parts))
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		p[i] = part
	}
	return p, nil
}

// String renders the pointer with RFC 6901 escaping.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		tok = strings.ReplaceAll(tok, "/", "~1")
		b.WriteString(tok)
	}
	return b.String()
}

// IsRoot reports whether the pointer addresses the document root.
func (p Pointer) IsRoot() bool {
	return len(p) == 0
}

// Child returns a new pointer one level deeper. The receiver is copied, so
// siblings derived from the same parent never alias each other.
func (p Pointer) Child(token string) Pointer {
	child := make(Pointer, len(p), len(p)+1)
	copy(child, p)
	return append(child, token)
}

// Index returns a new pointer into array element i.
func (p Pointer) Index(i int) Pointer {
	return p.Child(strconv.Itoa(i))
}

// Get resolves the pointer against root and returns the addressed value.
func Get(root interface{}, p Pointer) (interface{}, error) {
	cur := root
	for i, tok := range p {
		switch node := cur.(type) {
		case *Object:
			v, ok := node.Get(tok)
			if !ok {
				return nil, fmt.Errorf("key %q not found at %q", tok, p[:i].String())
			}
			cur = v
		case []interface{}:
			idx, err := arrayIndex(tok, len(node))
			if err != nil {
				return nil, fmt.Errorf("at %q: %w", p[:i].String(), err)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", cur, p[:i].String())
		}
	}
	return cur, nil
}

// WithValue returns a new tree equal to root except that the location
// addressed by p holds value. Containers along the path are copied; all
// sibling subtrees are shared with the original tree, which stays untouched.
func WithValue(root interface{}, p Pointer, value interface{}) (interface{}, error) {
	if len(p) == 0 {
		return value, nil
	}
	tok := p[0]
	switch node := root.(type) {
	case *Object:
		child, ok := node.Get(tok)
		if !ok {
			return nil, fmt.Errorf("key %q not found", tok)
		}
		replaced, err := WithValue(child, p[1:], value)
		if err != nil {
			return nil, err
		}
		clone := node.Clone()
		clone.Set(tok, replaced)
		return clone, nil
	case []interface{}:
		idx, err := arrayIndex(tok, len(node))
		if err != nil {
			return nil, err
		}
		replaced, err := WithValue(node[idx], p[1:], value)
		if err != nil {
			return nil, err
		}
		clone := make([]interface{}, len(node))
		copy(clone, node)
		clone[idx] = replaced
		return clone, nil
	default:
		return nil, fmt.Errorf("cannot descend into %T with token %q", root, tok)
	}
}

func arrayIndex(tok string, length int) (int, error) {
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("array index %q is not a number", tok)
	}
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("array index %d out of range [0,%d)", idx, length)
	}
	return idx, nil
}
