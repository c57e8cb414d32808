package device

import (
	"OptiSense/pkg/response"
	"net/http"
)

var (
	ErrRegisterDevice = response.NewError(http.StatusInternalServerError, "failed to register device")
)
