package domain

import "strings"

// SarcasmVerdict is the three-way outcome of the sarcasm stage.
type SarcasmVerdict string

const (
	SarcasmNo        SarcasmVerdict = "no"
	SarcasmAmbiguous SarcasmVerdict = "ambiguous"
	SarcasmSarcastic SarcasmVerdict = "sarcastic"
)

func (v SarcasmVerdict) String() string {
	return string(v)
}

func (v SarcasmVerdict) IsValid() bool {
	switch v {
	case SarcasmNo, SarcasmAmbiguous, SarcasmSarcastic:
		return true
	default:
		return false
	}
}

// NormalizeSarcasmVerdict maps the model's IS_SARCASTIC value. Unrecognised
// values fall back to SarcasmNo.
func NormalizeSarcasmVerdict(raw string) (SarcasmVerdict, bool) {
	value := strings.ToUpper(strings.Trim(strings.TrimSpace(raw), "[]()*\"'.!: "))
	if fields := strings.Fields(value); len(fields) > 0 {
		value = strings.Trim(fields[0], "[]()*\"'.,!:")
	}

	switch value {
	case "YES", "SARCASTIC", "TRUE", "Y":
		return SarcasmSarcastic, true
	case "UNKNOWN", "AMBIGUOUS", "UNCERTAIN", "MAYBE", "UNSURE":
		return SarcasmAmbiguous, true
	case "NO", "FALSE", "N", "NOT":
		return SarcasmNo, true
	default:
		return SarcasmNo, false
	}
}

// SarcasmResult is created per request and never persisted.
type SarcasmResult struct {
	Verdict      SarcasmVerdict `json:"is_sarcasm"`
	ToxicityHint Label          `json:"toxicity_hint"`
	TrueMeaning  string         `json:"true_meaning"`
}

// NoSarcasm is the result used when the stage is disabled or the model said no.
func NoSarcasm(text string) SarcasmResult {
	return SarcasmResult{
		Verdict:      SarcasmNo,
		ToxicityHint: LabelNeutral,
		TrueMeaning:  text,
	}
}

func (r SarcasmResult) IsSarcastic() bool {
	return r.Verdict == SarcasmSarcastic
}

func (r SarcasmResult) IsAmbiguous() bool {
	return r.Verdict == SarcasmAmbiguous
}

// TextToClassify returns the true meaning only for confirmed sarcasm; ambiguous
// and literal text are classified as written.
func (r SarcasmResult) TextToClassify(original string) string {
	if r.IsSarcastic() && strings.TrimSpace(r.TrueMeaning) != "" {
		return r.TrueMeaning
	}
	return original
}
