package model

// Release represents a GitHub release. TagName is the cross-repository
// matching key; Assets is populated only while the release is being
// transferred.
type Release struct {
	ID         int64
	TagName    string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
	Assets     []*Asset
}

// Asset represents a binary file attached to a release. Content is fetched
// on demand during transfer and never stored on the struct.
type Asset struct {
	ID          int64
	Name        string
	Size        int64
	ContentType string
}

// Chronological returns a copy of releases in oldest-first order. GitHub
// lists releases newest-first; replaying history needs the reverse.
func Chronological(releases []*Release) []*Release {
	reversed := make([]*Release, len(releases))
	for i, release := range releases {
		reversed[len(releases)-1-i] = release
	}
	return reversed
}

// FromTag returns the sub-sequence of releases starting at the first one
// whose tag equals tag, inclusive. An empty tag returns releases unchanged.
// An unmatched tag returns nil: the caller treats that as nothing to do.
func FromTag(releases []*Release, tag string) []*Release {
	if tag == "" {
		return releases
	}

	for i, release := range releases {
		if release.TagName == tag {
			return releases[i:]
		}
	}

	return nil
}
