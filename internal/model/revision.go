package model

// Revision is an opaque identifier for an upstream state, usually a release
// tag such as "2024/06" or a commit hash. Revisions are compared only for
// equality; ordering and ancestry are owned by the tracker.
type Revision string

// IsZero reports whether the revision is unset (first run).
func (r Revision) IsZero() bool {
	return r == ""
}

func (r Revision) String() string {
	return string(r)
}
