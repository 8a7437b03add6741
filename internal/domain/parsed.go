package domain

// ParseSource tells which tier of a stage's fallback chain produced a value.
type ParseSource string

const (
	// ParseStructured means the response followed the requested format.
	ParseStructured ParseSource = "structured"
	// ParseLoose means a value was recovered from free text.
	ParseLoose ParseSource = "loose"
	// ParseDefault means nothing usable was found and the safe default applies.
	ParseDefault ParseSource = "default"
)

// Parsed is a stage parse result tagged with the tier that produced it.
type Parsed[T any] struct {
	Value  T
	Source ParseSource
}

func Structured[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v, Source: ParseStructured}
}

func Loose[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v, Source: ParseLoose}
}

func Default[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v, Source: ParseDefault}
}

func (p Parsed[T]) IsFallback() bool {
	return p.Source != ParseStructured
}
