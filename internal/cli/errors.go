package cli

import (
	"fmt"

	"github.com/pkg/errors"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

var errNoCurrentUser = errors.New("no current user; run `prysma users create --id <id> --use` or `prysma users use <id>` (or pass --user)")
