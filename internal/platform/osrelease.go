package platform

import "strings"

// OSRelease holds the KEY=value pairs of an os-release file.
type OSRelease map[string]string

// ParseOSRelease parses os-release content. Comments and blank lines are
// skipped, surrounding quotes are stripped.
func ParseOSRelease(content string) OSRelease {
	rel := OSRelease{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		rel[key] = val
	}
	return rel
}

func (r OSRelease) ID() string         { return strings.ToLower(r["ID"]) }
func (r OSRelease) VersionID() string  { return r["VERSION_ID"] }
func (r OSRelease) PrettyName() string { return r["PRETTY_NAME"] }

// IDLike returns the space separated ID_LIKE list as a set.
func (r OSRelease) IDLike() map[string]bool {
	set := map[string]bool{}
	for _, id := range strings.Fields(strings.ToLower(r["ID_LIKE"])) {
		set[id] = true
	}
	return set
}
