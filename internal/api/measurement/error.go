package measurement

import (
	"OptiSense/pkg/response"
	"net/http"
)

var (
	ErrNoResult            = response.NewError(http.StatusUnprocessableEntity, "no result: check frame height, image and frame lines")
	ErrRecordNotFound      = response.NewError(http.StatusNotFound, "measurement record not found")
	ErrRecordNotOwned      = response.NewError(http.StatusForbidden, "measurement record does not belong to device")
	ErrMissingPatientLabel = response.NewError(http.StatusBadRequest, "patient label is required")
	ErrInvalidFrameHeight  = response.NewError(http.StatusBadRequest, "frame height must be positive")
	ErrCreateRecord        = response.NewError(http.StatusInternalServerError, "failed to save measurement record")
	ErrShareRecord         = response.NewError(http.StatusInternalServerError, "failed to share measurement record")
)
