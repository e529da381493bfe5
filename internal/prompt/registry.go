// Package prompt keeps the stage templates in one registry. Each entry
// declares its required slots, so a missing value is caught before any
// model call is made.
package prompt

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

type Stage string

const (
	StageAnalysis     Stage = "analysis"
	StageTranslation  Stage = "translation"
	StageOptimization Stage = "optimization"
	StageFix          Stage = "fix"
)

// Slot names.
const (
	SlotQuery                = "query"
	SlotAnalysis             = "analysis"
	SlotIndexPattern         = "index_pattern"
	SlotIndicesFieldsContext = "indices_fields_context"
	SlotESQuery              = "es_query"
	SlotErrorMessage         = "error_message"
)

// Vars maps slot names to their values.
type Vars map[string]string

// MissingSlotError reports a required slot without a value.
type MissingSlotError struct {
	Stage Stage
	Slots []string
}

func (e *MissingSlotError) Error() string {
	return fmt.Sprintf("prompt %q: missing value for slot(s) %s", e.Stage, strings.Join(e.Slots, ", "))
}

type Template struct {
	Stage Stage
	Slots []string
	tmpl  *template.Template
}

type Registry struct {
	templates map[Stage]*Template
}

// NewRegistry returns the registry holding the four stage templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[Stage]*Template)}
	r.mustAdd(StageAnalysis, analysisTemplate, SlotQuery, SlotIndicesFieldsContext)
	r.mustAdd(StageTranslation, translationTemplate, SlotAnalysis, SlotQuery, SlotIndexPattern, SlotIndicesFieldsContext)
	r.mustAdd(StageOptimization, optimizationTemplate, SlotESQuery, SlotIndicesFieldsContext)
	r.mustAdd(StageFix, fixTemplate, SlotESQuery, SlotIndicesFieldsContext, SlotErrorMessage)
	return r
}

func (r *Registry) mustAdd(stage Stage, text string, slots ...string) {
	tmpl := template.Must(template.New(string(stage)).Option("missingkey=error").Parse(text))
	r.templates[stage] = &Template{Stage: stage, Slots: slots, tmpl: tmpl}
}

// Lookup returns the template registered for stage.
func (r *Registry) Lookup(stage Stage) (*Template, bool) {
	t, ok := r.templates[stage]
	return t, ok
}

// Render fills the stage template. A required slot that is absent or blank
// yields a *MissingSlotError and nothing is rendered.
func (r *Registry) Render(stage Stage, vars Vars) (string, error) {
	t, ok := r.templates[stage]
	if !ok {
		return "", fmt.Errorf("prompt: unknown stage %q", stage)
	}
	return t.Render(vars)
}

func (t *Template) Render(vars Vars) (string, error) {
	if missing := t.Missing(vars); len(missing) > 0 {
		return "", &MissingSlotError{Stage: t.Stage, Slots: missing}
	}
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, map[string]string(vars)); err != nil {
		return "", fmt.Errorf("prompt %q: render: %w", t.Stage, err)
	}
	return sb.String(), nil
}

// Missing lists required slots with no usable value, sorted.
func (t *Template) Missing(vars Vars) []string {
	var missing []string
	for _, slot := range t.Slots {
		if v, ok := vars[slot]; !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, slot)
		}
	}
	sort.Strings(missing)
	return missing
}
