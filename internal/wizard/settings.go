package wizard

import "fmt"

// Settings is the flat generation-parameter record handed to every prompt
// compilation and model call. The core never invents defaults: callers
// (the config layer and the settings endpoint) own default-filling, and
// Validate rejects incomplete records.
type Settings struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
	TopP            float32 `json:"topP"`
	TopK            int32   `json:"topK"`
	Model           string  `json:"model"`
	ProjectID       string  `json:"projectId"`
	Region          string  `json:"region"`
	StorageBucket   string  `json:"storageBucket"`
}

// ConfigurationError names the Settings field that is missing or out of
// range. It is fatal to the attempted operation and never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid settings: %s %s", e.Field, e.Reason)
}

// Validate checks that the record is complete and every numeric field is
// within its documented range. StorageBucket is the only field that may
// be empty (empty means no remote mirroring).
func (s Settings) Validate() error {
	switch {
	case s.Temperature < 0 || s.Temperature > 2:
		return &ConfigurationError{Field: "temperature", Reason: "must be in [0, 2]"}
	case s.MaxOutputTokens <= 0:
		return &ConfigurationError{Field: "maxOutputTokens", Reason: "must be positive"}
	case s.TopP < 0 || s.TopP > 1:
		return &ConfigurationError{Field: "topP", Reason: "must be in [0, 1]"}
	case s.TopK <= 0:
		return &ConfigurationError{Field: "topK", Reason: "must be positive"}
	case s.Model == "":
		return &ConfigurationError{Field: "model", Reason: "is required"}
	case s.ProjectID == "":
		return &ConfigurationError{Field: "projectId", Reason: "is required"}
	case s.Region == "":
		return &ConfigurationError{Field: "region", Reason: "is required"}
	}
	return nil
}
