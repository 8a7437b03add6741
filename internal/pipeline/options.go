package pipeline

import "github.com/kapu/toxicity-agent-go/internal/constants"

// Options toggles the optional stages.
type Options struct {
	EnableRetrieval   bool
	EnableSarcasm     bool
	EnableTranslation bool
	RetrievalK        int
	// BatchConcurrency bounds BatchAnalyze. 1 processes items one at a time.
	BatchConcurrency int
}

func DefaultOptions() Options {
	return Options{
		EnableRetrieval:   true,
		EnableSarcasm:     true,
		EnableTranslation: false,
		RetrievalK:        constants.RetrievalConfig.DefaultK,
		BatchConcurrency:  1,
	}
}

func (o Options) normalized() Options {
	if o.RetrievalK < 0 {
		o.RetrievalK = 0
	}
	if o.BatchConcurrency < 1 {
		o.BatchConcurrency = 1
	}
	return o
}
