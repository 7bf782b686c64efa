package server

import (
	"errors"
	"fmt"
	"net/http"
)

// MissingFileError indicates the multipart upload lacked the file field.
type MissingFileError struct{}

func (e *MissingFileError) Error() string {
	return "multipart field 'file' is required"
}

// HTTPStatus returns the HTTP status code for this error
func (e *MissingFileError) HTTPStatus() int {
	return http.StatusBadRequest
}

// UploadTooLargeError indicates the upload exceeded the configured limit.
type UploadTooLargeError struct {
	LimitBytes int64
}

func (e *UploadTooLargeError) Error() string {
	return fmt.Sprintf("upload exceeds the %d byte limit", e.LimitBytes)
}

// HTTPStatus returns the HTTP status code for this error
func (e *UploadTooLargeError) HTTPStatus() int {
	return http.StatusRequestEntityTooLarge
}

// UnsupportedMediaTypeError indicates the upload is not a JPEG or PNG image.
// Detection is based on content sniffing, not the filename.
type UnsupportedMediaTypeError struct {
	Detected string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("unsupported media type %q, only JPEG and PNG images are accepted", e.Detected)
}

// HTTPStatus returns the HTTP status code for this error
func (e *UnsupportedMediaTypeError) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// httpStatus maps an error to a response status, defaulting to 500.
func httpStatus(err error) int {
	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		return coded.HTTPStatus()
	}
	return http.StatusInternalServerError
}
