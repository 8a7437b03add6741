package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type TemplateName string

const (
	TemplateSarcasm    TemplateName = "sarcasm.tmpl"
	TemplateClassifier TemplateName = "classifier.tmpl"
	TemplateResponder  TemplateName = "responder.tmpl"
	TemplateTranslator TemplateName = "translator.tmpl"
)

// PromptBuilder renders embedded stage templates, parsing each one once.
type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*template.Template
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*template.Template),
	}
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return buf.String(), nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*template.Template, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := templateFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = tmpl

	return tmpl, nil
}
