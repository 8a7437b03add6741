package domain

// Classification is the parsed output of the classification stage.
type Classification struct {
	Label    Label  `json:"label"`
	SubLabel string `json:"sub_label"`
}

// TranslationResult is produced by the optional translation stage.
type TranslationResult struct {
	DetectedLanguage string `json:"detected_language"`
	IsEnglish        bool   `json:"is_english"`
	Translated       string `json:"translated"`
}

// StageMetadata records which backend answered a stage and how its output parsed.
type StageMetadata struct {
	Stage        string      `json:"stage"`
	Provider     string      `json:"provider"`
	Model        string      `json:"model"`
	UsedFallback bool        `json:"used_fallback"`
	ParseSource  ParseSource `json:"parse_source,omitempty"`
}

// AnalysisResult is returned to the caller once per input text. The pipeline does
// not retain it.
type AnalysisResult struct {
	Input             string             `json:"input"`
	Classification    Label              `json:"classification"`
	SubLabel          string             `json:"sub_label"`
	Explanation       string             `json:"explanation"`
	AuthorMessage     string             `json:"message_to_author"`
	Sarcasm           SarcasmResult      `json:"sarcasm"`
	RetrievedExamples []LabeledExample   `json:"retrieved_examples"`
	Translation       *TranslationResult `json:"translation,omitempty"`
	Stages            []StageMetadata    `json:"stages,omitempty"`
}

// BatchSummary counts labels across a batch.
type BatchSummary struct {
	Total   int           `json:"total"`
	Counts  map[Label]int `json:"counts"`
	Sarcasm int           `json:"sarcastic"`
}

func SummarizeBatch(results []*AnalysisResult) BatchSummary {
	summary := BatchSummary{
		Counts: make(map[Label]int, len(Labels)),
	}
	for _, label := range Labels {
		summary.Counts[label] = 0
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		summary.Total++
		summary.Counts[r.Classification]++
		if r.Sarcasm.IsSarcastic() {
			summary.Sarcasm++
		}
	}
	return summary
}

// Response is the output of the explanation stage.
type Response struct {
	Explanation   string `json:"explanation"`
	AuthorMessage string `json:"message_to_author"`
}
