package rest

import (
	"errors"
	"net/http"

	"github.com/Veenbreeze/aru-connect-mail/pkg/announce"
	"github.com/Veenbreeze/aru-connect-mail/pkg/auth"
	"github.com/Veenbreeze/aru-connect-mail/pkg/bulk"
	"github.com/Veenbreeze/aru-connect-mail/pkg/compose"
	"github.com/Veenbreeze/aru-connect-mail/pkg/mailbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/outbox"
	"github.com/Veenbreeze/aru-connect-mail/pkg/policy"
	"github.com/Veenbreeze/aru-connect-mail/pkg/server/web"
	"github.com/Veenbreeze/aru-connect-mail/pkg/storage"
)

// apiError maps domain errors onto the HTTP status reported to the client.  Unrecognized errors
// are returned unchanged, and become a 500.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	var (
		authErr     *auth.ValidationError
		composeErr  *compose.ValidationError
		bulkErr     *bulk.ValidationError
		announceErr *announce.ValidationError
		addrErr     *policy.AddressError
		denied      *outbox.DeniedError
		statusErr   *web.StatusError
	)
	switch {
	case errors.As(err, &statusErr):
		return statusErr
	case errors.Is(err, mailbox.ErrUnknownFolder):
		return badRequest(err, "folder")
	case errors.As(err, &authErr):
		return web.NewStatusError(http.StatusUnprocessableEntity, err, authErr.Fields...)
	case errors.As(err, &composeErr):
		return web.NewStatusError(http.StatusUnprocessableEntity, err, composeErr.Fields...)
	case errors.As(err, &bulkErr):
		return web.NewStatusError(http.StatusUnprocessableEntity, err, bulkErr.Fields...)
	case errors.As(err, &announceErr):
		return web.NewStatusError(http.StatusUnprocessableEntity, err, announceErr.Fields...)
	case errors.As(err, &addrErr), errors.Is(err, policy.ErrEmptyList):
		return web.NewStatusError(http.StatusUnprocessableEntity, err)
	case errors.Is(err, storage.ErrNotExist), errors.Is(err, announce.ErrNotFound):
		return web.NewStatusError(http.StatusNotFound, err)
	case errors.Is(err, auth.ErrExists), errors.Is(err, compose.ErrClosed),
		errors.Is(err, compose.ErrSending), errors.Is(err, bulk.ErrSending):
		return web.NewStatusError(http.StatusConflict, err)
	case errors.Is(err, auth.ErrBadCredentials):
		return web.NewStatusError(http.StatusUnauthorized, err)
	case errors.As(err, &denied):
		return web.NewStatusError(http.StatusForbidden, err)
	}
	return err
}

// badRequest reports a malformed request parameter.
func badRequest(err error, fields ...string) error {
	return web.NewStatusError(http.StatusBadRequest, err, fields...)
}
