package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// ObjectPathFromURL recovers the storage object path embedded in a download
// URL. Retrieval URLs carry the URL-encoded path between the "/o/" marker and
// the "?alt=" query marker:
//
//	https://firebasestorage.googleapis.com/v0/b/bkt/o/events%2Fmain%2Fa.jpg?alt=media
//
// yields "events/main/a.jpg". Input that does not carry both markers, or that
// cannot be URL-decoded, yields ErrNotFound.
func ObjectPathFromURL(imageURL string) (string, error) {
	decoded, err := url.QueryUnescape(imageURL)
	if err != nil {
		return "", fmt.Errorf("%w: undecodable url %q", ErrNotFound, imageURL)
	}

	start := strings.Index(decoded, "/o/")
	end := strings.Index(decoded, "?alt=")
	if start == -1 || end == -1 || end <= start+len("/o/") {
		return "", fmt.Errorf("%w: no object path in url %q", ErrNotFound, imageURL)
	}

	return decoded[start+len("/o/") : end], nil
}
