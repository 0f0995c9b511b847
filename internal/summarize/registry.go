package summarize

import "fmt"

// Kind selects a model family for a task type.
type Kind string

const (
	KindSummarization  Kind = "summarization"
	KindTextGeneration Kind = "text_generation"
	KindClassification Kind = "classification"
)

// ModelSpec describes a model's runtime characteristics, surfaced in the CLI
// so operators can pick a model that fits their hardware.
type ModelSpec struct {
	Size        string `json:"size"`
	Parameters  string `json:"parameters"`
	Speed       string `json:"speed"`
	UseCase     string `json:"use_case"`
	MemoryUsage string `json:"memory_usage"`
}

// Registry maps task kinds and short keys to hosted model identifiers. It is
// a value handed to whoever needs it, never package-level mutable state.
type Registry struct {
	models   map[Kind]map[string]string
	defaults map[Kind]string
	specs    map[string]ModelSpec
}

// NewRegistry returns the built-in model table.
func NewRegistry() *Registry {
	return &Registry{
		models: map[Kind]map[string]string{
			KindSummarization: {
				"distilbart":       "sshleifer/distilbart-cnn-12-6",
				"distilbart_large": "facebook/bart-large-cnn-distilled",
				"pegasus":          "google/pegasus-xsum",
				"bart":             "facebook/bart-large-cnn",
			},
			KindTextGeneration: {
				"tinyllama":  "TinyLlama/TinyLlama-1.1B-Chat-v1.0",
				"phi3_mini":  "microsoft/Phi-3-mini-4k-instruct",
				"distilgpt2": "distilbert/distilgpt2",
			},
			KindClassification: {
				"distilbert": "distilbert-base-uncased",
				"tiny_bert":  "prajjwal1/bert-tiny",
			},
		},
		defaults: map[Kind]string{
			KindSummarization:  "distilbart",
			KindTextGeneration: "tinyllama",
			KindClassification: "distilbert",
		},
		specs: map[string]ModelSpec{
			"sshleifer/distilbart-cnn-12-6": {
				Size:        "60MB",
				Parameters:  "39M",
				Speed:       "fast",
				UseCase:     "text summarization",
				MemoryUsage: "low",
			},
			"TinyLlama/TinyLlama-1.1B-Chat-v1.0": {
				Size:        "2.2GB",
				Parameters:  "1.1B",
				Speed:       "very fast",
				UseCase:     "chat and text generation",
				MemoryUsage: "medium",
			},
			"microsoft/Phi-3-mini-4k-instruct": {
				Size:        "7.4GB",
				Parameters:  "3.8B",
				Speed:       "fast",
				UseCase:     "instruction following",
				MemoryUsage: "high",
			},
			"distilbert-base-uncased": {
				Size:        "67MB",
				Parameters:  "66M",
				Speed:       "very fast",
				UseCase:     "classification",
				MemoryUsage: "low",
			},
		},
	}
}

// Model resolves a model identifier for the kind. An empty key selects the
// kind's default.
func (r *Registry) Model(kind Kind, key string) (string, error) {
	if key == "" {
		key = r.defaults[kind]
	}
	model, ok := r.models[kind][key]
	if !ok {
		return "", fmt.Errorf("unknown %s model key %q", kind, key)
	}
	return model, nil
}

// Spec returns the known characteristics of a model, or a zero spec.
func (r *Registry) Spec(model string) ModelSpec {
	return r.specs[model]
}

// Keys lists the registered short keys for a kind.
func (r *Registry) Keys(kind Kind) []string {
	keys := make([]string, 0, len(r.models[kind]))
	for key := range r.models[kind] {
		keys = append(keys, key)
	}
	return keys
}
