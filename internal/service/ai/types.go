package ai

// ModelPreset selects sampling parameters for a pipeline stage.
type ModelPreset string

const (
	PresetDetection      ModelPreset = "detection"      // 풍자 판별
	PresetClassification ModelPreset = "classification" // 라벨 분류
	PresetExplanation    ModelPreset = "explanation"    // 설명 생성
	PresetPrecise        ModelPreset = "precise"        // 번역 등 결정적 응답
)

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

// GenerateOptions holds per-call overrides.
type GenerateOptions struct {
	Model     string
	Overrides *ModelConfig
}

// GetPresetConfig returns the configuration for a preset
func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetDetection:
		return ModelConfig{
			Temperature:     0.3,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: 1024,
		}
	case PresetClassification:
		return ModelConfig{
			Temperature:     0.2,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 1024,
		}
	case PresetExplanation:
		return ModelConfig{
			Temperature:     0.4,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 1024,
		}
	case PresetPrecise:
		return ModelConfig{
			Temperature:     0.1,
			TopP:            0.9,
			TopK:            20,
			MaxOutputTokens: 1024,
		}
	default:
		return GetPresetConfig(PresetClassification)
	}
}

// resolveConfig applies non-zero overrides on top of the preset.
func resolveConfig(preset ModelPreset, opts *GenerateOptions) ModelConfig {
	config := GetPresetConfig(preset)
	if opts == nil || opts.Overrides == nil {
		return config
	}
	if opts.Overrides.Temperature > 0 {
		config.Temperature = opts.Overrides.Temperature
	}
	if opts.Overrides.TopP > 0 {
		config.TopP = opts.Overrides.TopP
	}
	if opts.Overrides.TopK > 0 {
		config.TopK = opts.Overrides.TopK
	}
	if opts.Overrides.MaxOutputTokens > 0 {
		config.MaxOutputTokens = opts.Overrides.MaxOutputTokens
	}
	return config
}

func modelOptions(model string) *GenerateOptions {
	if model == "" {
		return nil
	}
	return &GenerateOptions{Model: model}
}
