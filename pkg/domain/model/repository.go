package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octomirror/pkg/domain/types"
)

// Repository identifies a GitHub repository by owner and name
type Repository struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form of the repository
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository parses an "owner/name" identifier. The identifier must
// contain exactly one separator and both segments must be non-empty.
func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, goerr.New("repository must be in owner/name form",
			goerr.T(types.ErrTagConfig),
			goerr.V("repository", s),
		)
	}

	return Repository{Owner: parts[0], Name: parts[1]}, nil
}
