package catalog

import "github.com/daryltucker/persona-runner/internal/model"

const ProviderTogether = "together"

var models = []model.ModelConfig{
	{Name: "magacek/Llama-3.3-70B-Instruct-Reference-08f01c12", Model: "magacek/Llama-3.3-70B-Instruct-Reference-08f01c12", Provider: ProviderTogether},
	{Name: "magacek/DeepSeek-R1-Distill-Llama-70B-eef110cb", Model: "magacek/DeepSeek-R1-Distill-Llama-70B-eef110cb", Provider: ProviderTogether},
	{Name: "meta-llama/Llama-3.3-70B-Instruct-Turbo", Model: "meta-llama/Llama-3.3-70B-Instruct-Turbo", Provider: ProviderTogether},
	{Name: "meta-llama/Llama-4-Maverick-17B-128E-Instruct-FP8", Model: "meta-llama/Llama-4-Maverick-17B-128E-Instruct-FP8", Provider: ProviderTogether},
	{Name: "magacek/DeepSeek-R1-Distill-Qwen-1.5B-577a57b6-c9b1c7fa", Model: "magacek/DeepSeek-R1-Distill-Qwen-1.5B-577a57b6-c9b1c7fa", Provider: ProviderTogether},
}

// DefaultModels returns the built-in model catalog, used when the config
// file does not list any.
func DefaultModels() []model.ModelConfig {
	return append([]model.ModelConfig(nil), models...)
}

// DefaultMaxCases is how many battery entries a run executes.
const DefaultMaxCases = 10

// MaxModels bounds how many models one run may select.
const MaxModels = 5

// DefaultSampling is attached to every generation call of a run.
var DefaultSampling = model.SamplingParams{
	Temperature:      0.7,
	TopP:             0.9,
	FrequencyPenalty: 0.5,
	MaxTokens:        1000,
}
