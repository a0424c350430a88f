// Package name parses and composes the dotted object and member
// identifiers used throughout the object-linking protocol:
// "module.Interface" for objects and "module.Interface/member" for
// their properties, methods, and signals.
package name

import "strings"

// ResourceOf returns the object-id portion of id. If id has no "/",
// id is returned unchanged.
func ResourceOf(id string) string {
	if i := strings.IndexByte(id, '/'); i >= 0 {
		return id[:i]
	}
	return id
}

// MemberOf returns the member portion of id, or "" if id has no "/".
func MemberOf(id string) string {
	if i := strings.IndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return ""
}

// Join composes a member-id from an object-id and a member name.
func Join(resource, member string) string {
	return resource + "/" + member
}
