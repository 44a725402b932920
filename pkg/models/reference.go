package models

import (
	"strconv"
	"strings"
)

// SegmentKind distinguishes the three kinds of path segment in a data
// reference.
type SegmentKind int

const (
	SegmentField SegmentKind = iota
	SegmentIndex
	SegmentCurrentItem
)

// PathSegment is one step of a data-reference path.
type PathSegment struct {
	Kind  SegmentKind
	Name  string // field name for SegmentField
	Index int    // literal index for SegmentIndex
}

// FieldSegment, IndexSegment and CurrentItemSegment build the three segment
// shapes.
func FieldSegment(name string) PathSegment {
	return PathSegment{Kind: SegmentField, Name: name}
}

func IndexSegment(i int) PathSegment {
	return PathSegment{Kind: SegmentIndex, Index: i}
}

func CurrentItemSegment() PathSegment {
	return PathSegment{Kind: SegmentCurrentItem}
}

func (s PathSegment) String() string {
	switch s.Kind {
	case SegmentIndex:
		return strconv.Itoa(s.Index)
	case SegmentCurrentItem:
		return "current_item"
	default:
		return s.Name
	}
}

// DataReference is the normalized form of a data pill. Both surface syntaxes
// (dotted string and structured object) parse into this one type.
type DataReference struct {
	Provider string
	SourceAs string
	Path     []PathSegment
}

// PathPrefix returns the first n segments of the path.
func (r *DataReference) PathPrefix(n int) []PathSegment {
	if n > len(r.Path) {
		n = len(r.Path)
	}

	return r.Path[:n]
}

func (r *DataReference) String() string {
	parts := []string{"data", r.Provider, r.SourceAs}
	for _, seg := range r.Path {
		parts = append(parts, seg.String())
	}

	return strings.Join(parts, ".")
}

// SegmentsEqual compares two paths segment by segment.
func SegmentsEqual(a, b []PathSegment) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
