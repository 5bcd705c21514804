//go:build js

package resources

import (
	"io"

	"github.com/pkg/errors"
)

// FetchHTTP
// Stub for fetching a resource from a remote HTTP server.
func FetchHTTP(uri string, rsrc string, auth string) (io.ReadCloser, error) {
	return nil, errors.New("FetchHTTP not implemented")
}

// SizeHTTP
// Stub for getting the size of a resource from a remote HTTP server.
func SizeHTTP(uri string, rsrc string, auth string) (uint, error) {
	return 0, errors.New("SizeHTTP not implemented")
}
