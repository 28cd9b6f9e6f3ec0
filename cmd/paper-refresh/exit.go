// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/pdiddy/paper-refresh/internal/feed"
	"github.com/pdiddy/paper-refresh/internal/fetch"
	"github.com/pdiddy/paper-refresh/internal/splice"
)

// Process exit codes. Every failure is non-zero; the value tells a
// scheduler which stage failed.
const (
	exitOK      = 0
	exitFailure = 1
	exitFetch   = 2
	exitParse   = 3
	exitFile    = 4
	exitRegion  = 5
)

func exitCode(err error) int {
	var (
		fetchErr  *fetch.Error
		parseErr  *feed.ParseError
		fileErr   *splice.FileError
		regionErr *splice.RegionNotFoundError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &fetchErr):
		return exitFetch
	case errors.As(err, &parseErr):
		return exitParse
	case errors.As(err, &fileErr):
		return exitFile
	case errors.As(err, &regionErr):
		return exitRegion
	default:
		return exitFailure
	}
}
