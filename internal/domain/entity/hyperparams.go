package entity

// Hyperparams are the training settings forwarded to the FSOD service.
type Hyperparams struct {
	Model        string  `json:"model,omitempty"`
	Epochs       int     `json:"epochs,omitempty"`
	ImageSize    int     `json:"imgsz,omitempty"`
	Batch        int     `json:"batch,omitempty"`
	LearningRate float64 `json:"lr,omitempty"`
}

// WithDefaults fills zero fields from the service defaults.
func (h Hyperparams) WithDefaults(def Hyperparams) Hyperparams {
	if h.Model == "" {
		h.Model = def.Model
	}
	if h.Epochs == 0 {
		h.Epochs = def.Epochs
	}
	if h.ImageSize == 0 {
		h.ImageSize = def.ImageSize
	}
	if h.Batch == 0 {
		h.Batch = def.Batch
	}
	if h.LearningRate == 0 {
		h.LearningRate = def.LearningRate
	}
	return h
}
