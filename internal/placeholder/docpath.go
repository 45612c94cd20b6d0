package placeholder

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// step is one segment of a parsed path: a map key when index < 0,
// otherwise a list index.
type step struct {
	key   string
	index int
}

// parsePath splits a dotted path like "phases[1].milestones[2].description"
// into steps. Paths always start with a key; indices ride on a key segment.
func parsePath(path string) ([]step, error) {
	if strings.TrimSpace(path) == "" {
		return nil, eris.New("docpath: empty path")
	}

	var steps []step
	for _, part := range strings.Split(path, ".") {
		name := part
		rest := ""
		if i := strings.IndexByte(part, '['); i >= 0 {
			name, rest = part[:i], part[i:]
		}
		if name == "" {
			return nil, eris.Errorf("docpath: empty segment in %q", path)
		}
		steps = append(steps, step{key: name, index: -1})

		for rest != "" {
			if rest[0] != '[' {
				return nil, eris.Errorf("docpath: unexpected %q in %q", rest, path)
			}
			j := strings.IndexByte(rest, ']')
			if j < 0 {
				return nil, eris.Errorf("docpath: unterminated index in %q", path)
			}
			n, err := strconv.Atoi(rest[1:j])
			if err != nil || n < 0 {
				return nil, eris.Errorf("docpath: bad index %q in %q", rest[1:j], path)
			}
			steps = append(steps, step{index: n})
			rest = rest[j+1:]
		}
	}
	return steps, nil
}

// Get walks a generic JSON tree (map[string]any / []any) and returns the
// value at path.
func Get(root any, path string) (any, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	cur := root
	for _, st := range steps {
		if st.index >= 0 {
			list, ok := cur.([]any)
			if !ok {
				return nil, eris.Errorf("docpath: %q indexes a non-list", path)
			}
			if st.index >= len(list) {
				return nil, eris.Errorf("docpath: index %d out of range in %q", st.index, path)
			}
			cur = list[st.index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, eris.Errorf("docpath: %q keys into a non-object", path)
		}
		cur, ok = m[st.key]
		if !ok {
			return nil, eris.Errorf("docpath: key %q not found in %q", st.key, path)
		}
	}
	return cur, nil
}

// Set writes value at path, creating intermediate objects and lists as
// needed, and returns the resulting root. Lists grow with nil padding when
// the index is past the end. Set and Get are inverses: Get(Set(root, p, v), p)
// yields v for any well-formed p.
func Set(root any, path string, value any) (any, error) {
	steps, err := parsePath(path)
	if err != nil {
		return root, err
	}
	return write(root, steps, value, path)
}

func write(cur any, steps []step, value any, path string) (any, error) {
	if len(steps) == 0 {
		return value, nil
	}

	st := steps[0]
	if st.index >= 0 {
		list, ok := cur.([]any)
		if cur == nil {
			list, ok = nil, true
		}
		if !ok {
			return nil, eris.Errorf("docpath: %q indexes a non-list", path)
		}
		for len(list) <= st.index {
			list = append(list, nil)
		}
		child, err := write(list[st.index], steps[1:], value, path)
		if err != nil {
			return nil, err
		}
		list[st.index] = child
		return list, nil
	}

	m, ok := cur.(map[string]any)
	if cur == nil {
		m, ok = map[string]any{}, true
	}
	if !ok {
		return nil, eris.Errorf("docpath: %q keys into a non-object", path)
	}
	child, err := write(m[st.key], steps[1:], value, path)
	if err != nil {
		return nil, err
	}
	m[st.key] = child
	return m, nil
}
