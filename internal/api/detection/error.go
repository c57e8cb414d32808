package detection

import (
	"OptiSense/pkg/response"
	"net/http"
)

var (
	ErrNoDetection         = response.NewError(http.StatusNotFound, "no face or frame detected in image")
	ErrDetectionFailed     = response.NewError(http.StatusBadGateway, "landmark detection service failed")
	ErrBadRequest          = response.NewError(http.StatusBadRequest, "bad request")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
