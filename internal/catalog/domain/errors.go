package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrValidation      = errors.New("required form fields are missing")
	ErrUpload          = errors.New("image upload failed")
	ErrPersistence     = errors.New("document store operation failed")
)
