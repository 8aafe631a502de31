package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Authors is an ordered list of non-empty author display names. It decodes
// from any JSON shape the catalog or older app versions produced and always
// encodes as an array.
type Authors []string

func (a *Authors) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = NormalizeAuthors(raw)
	return nil
}

func (a Authors) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Line joins the names for display.
func (a Authors) Line() string {
	if len(a) == 0 {
		return "Unknown author"
	}
	return strings.Join(a, ", ")
}

type AuthorRefKind int

const (
	AuthorRefAbsent AuthorRefKind = iota
	AuthorRefText                 // a bare string
	AuthorRefName                 // an object exposing a name field
)

// AuthorRef is one entry of a raw authors list.
type AuthorRef struct {
	Kind  AuthorRefKind
	Value string
}

// ParseAuthorRef classifies a decoded JSON value.
func ParseAuthorRef(v any) AuthorRef {
	switch t := v.(type) {
	case string:
		return AuthorRef{Kind: AuthorRefText, Value: t}
	case AuthorRef:
		return t
	case map[string]any:
		name, ok := t["name"]
		if !ok || name == nil {
			return AuthorRef{}
		}
		if s, ok := name.(string); ok {
			return AuthorRef{Kind: AuthorRefName, Value: s}
		}
		return AuthorRef{Kind: AuthorRefName, Value: fmt.Sprint(name)}
	case map[string]string:
		name, ok := t["name"]
		if !ok {
			return AuthorRef{}
		}
		return AuthorRef{Kind: AuthorRefName, Value: name}
	}
	return AuthorRef{}
}

// Name returns the trimmed display name, or false for absent or blank refs.
func (r AuthorRef) Name() (string, bool) {
	if r.Kind == AuthorRefAbsent {
		return "", false
	}
	name := strings.TrimSpace(r.Value)
	return name, name != ""
}

// NormalizeAuthors turns any author representation into a clean list:
//   - a list keeps trimmed strings and trimmed names of {name} objects
//   - a single string is split on commas
//   - a single {name} object becomes a one-element list
//   - anything else is empty
//
// NormalizeAuthors(NormalizeAuthors(x)) == NormalizeAuthors(x).
func NormalizeAuthors(v any) Authors {
	out := Authors{}
	switch t := v.(type) {
	case nil:
		return out
	case Authors:
		return normalizeList(len(t), func(i int) AuthorRef { return AuthorRef{Kind: AuthorRefText, Value: t[i]} })
	case []string:
		return normalizeList(len(t), func(i int) AuthorRef { return AuthorRef{Kind: AuthorRefText, Value: t[i]} })
	case []any:
		return normalizeList(len(t), func(i int) AuthorRef { return ParseAuthorRef(t[i]) })
	case []AuthorRef:
		return normalizeList(len(t), func(i int) AuthorRef { return t[i] })
	case []map[string]any:
		return normalizeList(len(t), func(i int) AuthorRef { return ParseAuthorRef(t[i]) })
	case string:
		for _, piece := range strings.Split(t, ",") {
			if name := strings.TrimSpace(piece); name != "" {
				out = append(out, name)
			}
		}
		return out
	case map[string]any, map[string]string, AuthorRef:
		ref := ParseAuthorRef(t)
		if ref.Kind == AuthorRefName {
			if name, ok := ref.Name(); ok {
				out = append(out, name)
			}
		}
		return out
	}
	return out
}

func normalizeList(n int, at func(int) AuthorRef) Authors {
	out := make(Authors, 0, n)
	for i := 0; i < n; i++ {
		if name, ok := at(i).Name(); ok {
			out = append(out, name)
		}
	}
	return out
}
