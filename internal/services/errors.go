package services

import "errors"

var (
	ErrReportNotFound = errors.New("report not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrBanNotFound    = errors.New("ban not found")
	ErrAppealNotFound = errors.New("appeal not found")

	// Conflicts, distinct from not-found so callers can render
	// "already done" versus "missing".
	ErrDuplicateAppeal       = errors.New("an appeal for this report already exists")
	ErrBanAlreadyLifted      = errors.New("ban has already been lifted")
	ErrAppealAlreadyResolved = errors.New("appeal has already been resolved")
)
