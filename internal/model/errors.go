package model

import "errors"

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrSessionNotFound   = errors.New("upload session not found")
	ErrPathConflict      = errors.New("path already exists")
	ErrInvalidInput      = errors.New("invalid input")
)
