package dog

import "surprise-service/internal/common/validation"

// ImageResponse is the payload of the random image endpoint.
type ImageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var imageSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["status", "message"],
	"properties": {
		"status": {"type": "string", "enum": ["success"]},
		"message": {"type": "string", "minLength": 1}
	}
}`)
