package service

import (
	"sort"
	"strings"
)

// DenyList is the fixed set of authority names hidden from non-admin callers
type DenyList struct {
	names map[string]struct{}
}

// NewDenyList builds a deny-list from names, trimming them and dropping empties
func NewDenyList(names ...string) DenyList {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return DenyList{names: set}
}

// ParseDenyList parses a comma separated list of authority names
func ParseDenyList(csv string) DenyList {
	return NewDenyList(strings.Split(csv, ",")...)
}

func (d DenyList) Contains(name string) bool {
	_, ok := d.names[name]
	return ok
}

// Names returns the deny-listed names in sorted order
func (d DenyList) Names() []string {
	names := make([]string, 0, len(d.names))
	for name := range d.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsVisible reports whether an authority may be shown. Only anonymous
// callers are subject to the deny-list.
func IsVisible(name string, anonymous bool, deny DenyList) bool {
	return !anonymous || !deny.Contains(name)
}
