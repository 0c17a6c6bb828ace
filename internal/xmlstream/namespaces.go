package xmlstream

import "fmt"

// Namespaces is an ordered prefix to URI table declared on a document root.
type Namespaces struct {
	order []string
	uris  map[string]string
}

func NewNamespaces() *Namespaces {
	return &Namespaces{uris: map[string]string{}}
}

// Declare adds prefix. Repeating an identical declaration is a no-op; binding
// an existing prefix to another URI is an error.
func (n *Namespaces) Declare(prefix, uri string) error {
	if uri == "" {
		return fmt.Errorf("namespace %q: empty uri", prefix)
	}
	if cur, ok := n.uris[prefix]; ok {
		if cur != uri {
			return fmt.Errorf("namespace %q already bound to %q, cannot rebind to %q", prefix, cur, uri)
		}
		return nil
	}
	n.uris[prefix] = uri
	n.order = append(n.order, prefix)
	return nil
}

func (n *Namespaces) URI(prefix string) (string, bool) {
	u, ok := n.uris[prefix]
	return u, ok
}

func (n *Namespaces) Prefixes() []string {
	return append([]string(nil), n.order...)
}

func (n *Namespaces) Len() int { return len(n.order) }

// Attrs renders the declarations as xmlns attributes in declaration order.
func (n *Namespaces) Attrs() []Attr {
	out := make([]Attr, 0, len(n.order))
	for _, p := range n.order {
		name := "xmlns"
		if p != "" {
			name += ":" + p
		}
		out = append(out, Attr{Name: name, Value: n.uris[p]})
	}
	return out
}
