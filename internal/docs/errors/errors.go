// Package errors provides sentinel errors for page discovery.
package errors

import "errors"

var (
	// ErrDocsDirNotFound indicates the configured docs directory does not exist.
	ErrDocsDirNotFound = errors.New("docs directory not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the docs directory failed.
	ErrDocsDirWalkFailed = errors.New("docs directory walk failed")

	// ErrFileReadFailed indicates reading a page failed.
	ErrFileReadFailed = errors.New("page read failed")

	// ErrFrontmatterInvalid indicates a page carries malformed YAML frontmatter.
	ErrFrontmatterInvalid = errors.New("invalid page frontmatter")

	// ErrRouteCollision indicates two files map to the same route.
	ErrRouteCollision = errors.New("route collision detected")
)
