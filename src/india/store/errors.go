package store

import (
	"code.vellumsync.dev/vellum/go/src/alfa/errors"
	"code.vellumsync.dev/vellum/go/src/echo/markl"
)

func notFoundError(id markl.Id) error {
	return errors.MakeErrNotFoundString(id.String())
}

func isNotFound(err error) bool {
	return errors.IsErrNotFound(err)
}
