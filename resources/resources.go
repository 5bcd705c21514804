//go:build !js
// +build !js

package resources

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// FetchHTTP
// Fetch a resource from a remote HTTP server with bearer token auth.
func FetchHTTP(uri string, rsrc string, auth string) (io.ReadCloser, error) {
	req, reqErr := http.NewRequest("GET", uri+"/"+rsrc, nil)
	if reqErr != nil {
		return nil, reqErr
	}
	if auth != "" {
		req.Header.Add("Authorization", "Bearer "+auth)
	}
	resp, remoteErr := http.DefaultClient.Do(req)
	if remoteErr != nil {
		return nil, remoteErr
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Wrapf(ErrHTTPStatus, "GET %s/%s: %d", uri,
			rsrc, resp.StatusCode)
	}
	return resp.Body, nil
}

// SizeHTTP
// Get the size of a resource from a remote HTTP server with bearer token auth.
func SizeHTTP(uri string, rsrc string, auth string) (uint, error) {
	req, reqErr := http.NewRequest("HEAD", uri+"/"+rsrc, nil)
	if reqErr != nil {
		return 0, reqErr
	}
	if auth != "" {
		req.Header.Add("Authorization", "Bearer "+auth)
	}
	resp, remoteErr := http.DefaultClient.Do(req)
	if remoteErr != nil {
		return 0, remoteErr
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Wrapf(ErrHTTPStatus, "HEAD %s/%s: %d", uri,
			rsrc, resp.StatusCode)
	}
	size, sizeErr := strconv.Atoi(resp.Header.Get("Content-Length"))
	if sizeErr != nil {
		return 0, errors.Wrap(sizeErr, fmt.Sprintf(
			"bad Content-Length for %s/%s", uri, rsrc))
	}
	return uint(size), nil
}
