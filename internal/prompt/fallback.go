package prompt

import (
	"fmt"
	"strings"
)

// Fallback prompts are used when an embedded template fails to render. They keep
// the same output contract as the templates with less guidance.

func FallbackSarcasm(data SarcasmData) string {
	guidance := "Judge the overall intent; look for contradictions between the stated feelings and the described events."
	if data.IsShort {
		guidance = "Look at surface cues: exaggerated praise, slang, punctuation, casing, and emoji that contradict the words."
	}

	return fmt.Sprintf(`You are an expert at detecting sarcasm and irony in text.
Sarcasm means the literal words differ from the true meaning. If a single message could be
genuine or sarcastic depending on context, answer UNKNOWN.

%s

TEXT TO ANALYSE:
"""%s"""

Respond in EXACTLY this format:
IS_SARCASTIC: <YES/NO/UNKNOWN>
TOXICITY: <GOOD/NEUTRAL/TOXIC> (based on TRUE meaning)
TRUE_MEANING: <what the text actually means, or the original text>`, guidance, data.Text)
}

func FallbackClassifier(data ClassifierData) string {
	note := ""
	switch {
	case data.IsSarcastic:
		note = fmt.Sprintf("\nThe original message %q was sarcastic; classify its true meaning below.\n", data.OriginalText)
	case data.IsAmbiguous:
		note = "\nThe message may be sarcastic but this is unverified; classify it as written.\n"
	}

	return fmt.Sprintf(`You are a strict content classification engine.
TOXIC = hate, threats, harassment, attacks, obscenity. NEUTRAL = facts, questions, calm disagreement.
GOOD = supportive, appreciative, respectful.

SIMILAR LABELED EXAMPLES:
%s%s
TEXT TO CLASSIFY:
"""%s"""

Reply with EXACTLY one line: <LABEL> - <SUB_LABEL>
LABEL is TOXIC, NEUTRAL, or GOOD. SUB_LABEL is an UPPERCASE reason such as HATE SPEECH.`,
		renderExampleBlock(data.Examples), note, data.Text)
}

func FallbackResponder(data ResponderData) string {
	builder := &strings.Builder{}
	builder.WriteString("You are a content moderation assistant explaining a classification decision.\n\n")
	builder.WriteString(fmt.Sprintf("TEXT: \"\"\"%s\"\"\"\n", data.Text))
	builder.WriteString(fmt.Sprintf("CLASSIFICATION: %s (%s)\n", data.Label, data.SubLabel))
	if data.IsSarcastic {
		builder.WriteString(fmt.Sprintf("The text is sarcastic; its true meaning is %q.\n", data.TrueMeaning))
	} else if data.IsAmbiguous {
		builder.WriteString("The text may be sarcastic; this could not be confirmed.\n")
	}
	builder.WriteString(fmt.Sprintf("\nExplain in 2-3 sentences why the text is %s.\n", data.Label))
	if data.IsToxic {
		builder.WriteString("Also write a 1-2 sentence respectful message asking the author to rephrase.\n\n")
		builder.WriteString("Format:\nExplanation: <explanation>\nMessage to Author: <message>")
	} else {
		builder.WriteString("\nFormat:\nExplanation: <explanation>")
	}
	return builder.String()
}

func FallbackTranslator(data TranslatorData) string {
	return fmt.Sprintf(`Detect the language of the text and translate it to English if needed. Keep the tone.
Reply in EXACTLY this format:
DETECTED_LANGUAGE: <language>
IS_ENGLISH: <YES or NO>
TRANSLATED: <English text>

Input text:
"""%s"""`, data.Text)
}
