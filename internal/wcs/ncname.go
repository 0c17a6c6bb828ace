package wcs

import (
	"regexp"
	"strings"
)

// delimiter between workspace and name in coverage identifiers; ':' is not
// legal inside an NCName.
const ncnameDelimiter = "__"

var ncnamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

func IsNCName(s string) bool { return ncnamePattern.MatchString(s) }

type QualifiedName struct {
	Workspace string
	Name      string
}

func (q QualifiedName) String() string {
	if q.Workspace == "" {
		return q.Name
	}
	return q.Workspace + ":" + q.Name
}

func EncodeNCName(workspace, name string) string {
	if workspace == "" {
		return name
	}
	return workspace + ncnameDelimiter + name
}

// DecodeNCName lists the workspace/name splits an identifier may stand for,
// one per delimiter occurrence from left to right, then the unqualified name.
func DecodeNCName(id string) []QualifiedName {
	var out []QualifiedName
	for i := 0; ; {
		j := strings.Index(id[i:], ncnameDelimiter)
		if j < 0 {
			break
		}
		pos := i + j
		ws, name := id[:pos], id[pos+len(ncnameDelimiter):]
		if ws != "" && name != "" {
			out = append(out, QualifiedName{Workspace: ws, Name: name})
		}
		i = pos + 1
	}
	return append(out, QualifiedName{Name: id})
}
