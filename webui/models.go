package webui

import "net/http"

// TaskInfo describes one task in the /models/info response.
type TaskInfo struct {
	Available   bool     `json:"available"`
	Description string   `json:"description"`
	Models      []string `json:"models,omitempty"`
}

// ModelsInfo is the static capability descriptor.
type ModelsInfo struct {
	Outpainting     TaskInfo `json:"outpainting"`
	Inpainting      TaskInfo `json:"inpainting"`
	SuperResolution TaskInfo `json:"superresolution"`
	Backend         string   `json:"backend,omitempty"`
	BaseModel       string   `json:"base_model,omitempty"`
	ControlNetModel string   `json:"controlnet_model,omitempty"`
}

// NewModelsInfo returns the descriptor for the configured models.
func NewModelsInfo(backend, baseModel, controlNetModel string) ModelsInfo {
	return ModelsInfo{
		Outpainting: TaskInfo{
			Available:   true,
			Description: "Expands images beyond their original borders",
		},
		Inpainting: TaskInfo{
			Available:   true,
			Description: "Fills masked areas of the image",
		},
		SuperResolution: TaskInfo{
			Available:   false,
			Description: "Increases image resolution",
			Models:      []string{"esrgan", "realesrgan", "swinir"},
		},
		Backend:         backend,
		BaseModel:       baseModel,
		ControlNetModel: controlNetModel,
	}
}

func (s *Server) handleModelsInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.modelsInfo)
}
