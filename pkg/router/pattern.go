package router

import (
	"fmt"
	"strings"

	"github.com/facturacom/webrouter/pkg/routepath"
)

type segmentKind int

const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentCatchAll
)

// segment is one compiled element of a route pattern.
type segment struct {
	kind segmentKind

	// value is the literal for static segments, the name for params
	value string

	// paramType is the expected parameter type (string, int, uuid)
	paramType string
}

// pattern is a compiled route path.
type pattern struct {
	raw      string
	segments []segment
}

// compilePattern parses a route path such as "/show/:uuid".
func compilePattern(path string) (*pattern, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", path)
	}

	p := &pattern{raw: path}
	seen := make(map[string]bool)
	parts := splitPath(path)

	for i, seg := range parts {
		switch {
		case seg == "":
			return nil, fmt.Errorf("pattern %q has an empty segment", path)

		case strings.HasPrefix(seg, "*"):
			if i != len(parts)-1 {
				return nil, fmt.Errorf("pattern %q: catch-all %q must be the last segment", path, seg)
			}
			name := seg[1:]
			if err := checkParamName(path, name, seen); err != nil {
				return nil, err
			}
			p.segments = append(p.segments, segment{kind: segmentCatchAll, value: name, paramType: "[]string"})

		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			if err := checkParamName(path, name, seen); err != nil {
				return nil, err
			}
			if !knownParamType(paramType) {
				return nil, fmt.Errorf("pattern %q: unknown type %q for param %q", path, paramType, name)
			}
			p.segments = append(p.segments, segment{kind: segmentParam, value: name, paramType: paramType})

		default:
			if seg == "." || seg == ".." {
				return nil, fmt.Errorf("pattern %q is not canonical", path)
			}
			literal, err := routepath.DecodeSegment(seg, false)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", path, err)
			}
			p.segments = append(p.segments, segment{kind: segmentStatic, value: literal})
		}
	}

	return p, nil
}

func checkParamName(path, name string, seen map[string]bool) error {
	if name == "" {
		return fmt.Errorf("pattern %q has an unnamed parameter", path)
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("pattern %q: invalid parameter name %q", path, name)
		}
	}
	if seen[name] {
		return fmt.Errorf("pattern %q repeats parameter %q", path, name)
	}
	seen[name] = true
	return nil
}

// params returns the dynamic segments in declaration order.
func (p *pattern) params() []ParamDef {
	var defs []ParamDef
	for _, seg := range p.segments {
		switch seg.kind {
		case segmentParam:
			defs = append(defs, ParamDef{Name: seg.value, Type: seg.paramType})
		case segmentCatchAll:
			defs = append(defs, ParamDef{Name: seg.value, Type: seg.paramType, CatchAll: true})
		}
	}
	return defs
}

// match tests raw (still escaped) request segments against the pattern.
// Every dynamic segment must capture a non-empty value.
func (p *pattern) match(parts []string) (map[string]string, bool) {
	params := make(map[string]string)

	for i, seg := range p.segments {
		if seg.kind == segmentCatchAll {
			if i >= len(parts) {
				return nil, false
			}
			value, err := routepath.DecodeSegment(strings.Join(parts[i:], "/"), true)
			if err != nil || value == "" {
				return nil, false
			}
			params[seg.value] = value
			return params, true
		}

		if i >= len(parts) {
			return nil, false
		}
		value, err := routepath.DecodeSegment(parts[i], false)
		if err != nil {
			return nil, false
		}

		switch seg.kind {
		case segmentStatic:
			if value != seg.value {
				return nil, false
			}
		case segmentParam:
			if value == "" || ValidateParam(value, seg.paramType) != nil {
				return nil, false
			}
			params[seg.value] = value
		}
	}

	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// build renders the pattern with the given params.
func (p *pattern) build(params map[string]string) (string, error) {
	if len(p.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		switch seg.kind {
		case segmentStatic:
			b.WriteString(routepath.EscapeSegment(seg.value))

		case segmentParam:
			value := params[seg.value]
			if value == "" {
				return "", fmt.Errorf("%w: missing %q", ErrInvalidParam, seg.value)
			}
			if err := ValidateParam(value, seg.paramType); err != nil {
				return "", fmt.Errorf("%w: %q: %v", ErrInvalidParam, seg.value, err)
			}
			if strings.Contains(value, "/") {
				return "", fmt.Errorf("%w: %q: value %q contains a slash", ErrInvalidParam, seg.value, value)
			}
			if err := checkSegmentValue(seg.value, value); err != nil {
				return "", err
			}
			b.WriteString(routepath.EscapeSegment(value))

		case segmentCatchAll:
			value := strings.Trim(params[seg.value], "/")
			if value == "" {
				return "", fmt.Errorf("%w: missing %q", ErrInvalidParam, seg.value)
			}
			parts := strings.Split(value, "/")
			for i, part := range parts {
				if part == "" {
					return "", fmt.Errorf("%w: %q: value %q has an empty segment", ErrInvalidParam, seg.value, value)
				}
				if err := checkSegmentValue(seg.value, part); err != nil {
					return "", err
				}
				parts[i] = routepath.EscapeSegment(part)
			}
			b.WriteString(strings.Join(parts, "/"))
		}
	}
	return b.String(), nil
}

// checkSegmentValue rejects dot segments, which canonicalization would
// remove or resolve against the parent.
func checkSegmentValue(name, value string) error {
	if value == "." || value == ".." {
		return fmt.Errorf("%w: %q: %q is a dot segment", ErrInvalidParam, name, value)
	}
	return nil
}

// splitPath splits a pattern into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":uuid" or ":id:int" -> name="uuid"/"id", type="string"/"int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
