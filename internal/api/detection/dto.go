package detection

import "OptiSense/internal/entity"

type LandmarkRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

type LandmarkResponse struct {
	Data   entity.LandmarkDetection `json:"data"`
	Cached bool                     `json:"cached"`
}
