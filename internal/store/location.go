package store

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Location schemes.
const (
	SchemeFile  = "file"
	SchemeGCS   = "gs"
	SchemeS3    = "s3"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// ErrInvalidLocation indicates a location string could not be parsed.
var ErrInvalidLocation = errors.New("store: invalid location")

// Location identifies a single object: a local file, a bucket object or a URL.
type Location struct {
	// Scheme is one of the Scheme constants.
	Scheme string

	// Bucket is the bucket name for gs and s3 locations.
	Bucket string

	// Key is the object key within the bucket, the file path for local
	// files, or the full URL for http(s) locations.
	Key string
}

// ParseLocation parses a local path, "gs://bucket/key", "s3://bucket/key" or
// an http(s) URL.
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidLocation)
	}

	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return Location{Scheme: SchemeFile, Key: filepath.Clean(s)}, nil
	}

	switch scheme {
	case SchemeGCS, SchemeS3:
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("%w: %s: missing bucket name", ErrInvalidLocation, s)
		}
		if key == "" || strings.HasSuffix(key, "/") {
			return Location{}, fmt.Errorf("%w: %s: missing object key", ErrInvalidLocation, s)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	case SchemeHTTP, SchemeHTTPS:
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return Location{}, fmt.Errorf("%w: %s", ErrInvalidLocation, s)
		}
		return Location{Scheme: scheme, Key: s}, nil
	case SchemeFile:
		return Location{Scheme: SchemeFile, Key: filepath.Clean(rest)}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocation, scheme)
	}
}

// String returns the location in the form ParseLocation accepts.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeGCS, SchemeS3:
		return l.Scheme + "://" + l.Bucket + "/" + l.Key
	default:
		return l.Key
	}
}

// Sibling returns a location next to l whose key is l's key plus suffix.
func (l Location) Sibling(suffix string) Location {
	l.Key += suffix
	return l
}
