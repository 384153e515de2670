package event

import (
	"slices"
	"strings"
)

// Tags is a set of tags kept sorted and free of duplicates.
type Tags []string

// NewTags builds a tag set from raw values. Empty tags are dropped silently;
// tags starting with '&' are reserved and returned as rejected.
func NewTags(raw ...string) (tags Tags, rejected []string) {
	for _, t := range raw {
		t = strings.TrimSpace(t)
		switch {
		case t == "":
		case strings.HasPrefix(t, "&"):
			rejected = append(rejected, t)
		default:
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags), rejected
}

// SplitTags parses the comma separated form used on the command line.
func SplitTags(s string) (Tags, []string) {
	return NewTags(strings.Split(s, ",")...)
}

// Has reports whether tag is in the set.
func (t Tags) Has(tag string) bool {
	_, ok := slices.BinarySearch(t, tag)
	return ok
}

// Equal reports whether both sets hold the same tags.
func (t Tags) Equal(other Tags) bool {
	return slices.Equal(t, other)
}

// Union returns the set union of t and other.
func (t Tags) Union(other Tags) Tags {
	out := make(Tags, 0, len(t)+len(other))
	out = append(out, t...)
	out = append(out, other...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Without returns a copy of t with tag removed.
func (t Tags) Without(tag string) Tags {
	out := make(Tags, 0, len(t))
	for _, v := range t {
		if v != tag {
			out = append(out, v)
		}
	}
	return out
}

// Intersect returns the tags of t that appear in names, in t's order.
func (t Tags) Intersect(names []string) []string {
	var out []string
	for _, v := range t {
		if slices.Contains(names, v) {
			out = append(out, v)
		}
	}
	return out
}

func (t Tags) String() string {
	return strings.Join(t, ",")
}
