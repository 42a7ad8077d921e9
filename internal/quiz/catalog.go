// Package quiz loads the quiz question catalog.
package quiz

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/staffapp/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Option is one selectable answer.
type Option struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Question describes a single quiz field. An empty Step means the question
// is graded in the report but never shown.
type Question struct {
	Field   model.Field `yaml:"-"`
	Name    string      `yaml:"field"`
	Step    string      `yaml:"step"`
	Prompt  string      `yaml:"prompt"`
	Label   string      `yaml:"label"`
	Options []Option    `yaml:"options"`
}

type catalogFile struct {
	Questions []Question `yaml:"questions"`
}

// Catalog indexes questions by field.
type Catalog struct {
	questions []Question
	byField   map[model.Field]int
}

// Default returns the embedded catalog.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("quiz: embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse decodes a YAML catalog and checks it against the application
// fields.
func Parse(data []byte) (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode quiz catalog: %w", err)
	}
	c := Catalog{byField: map[model.Field]int{}}
	for _, q := range file.Questions {
		field, err := model.ParseField(q.Name)
		if err != nil {
			return Catalog{}, err
		}
		if field.Kind() != model.KindChoice {
			return Catalog{}, fmt.Errorf("field %q is not a quiz field", q.Name)
		}
		if _, dup := c.byField[field]; dup {
			return Catalog{}, fmt.Errorf("duplicate question for %q", q.Name)
		}
		if len(q.Options) == 0 {
			return Catalog{}, fmt.Errorf("question %q has no options", q.Name)
		}
		q.Field = field
		c.byField[field] = len(c.questions)
		c.questions = append(c.questions, q)
	}
	return c, nil
}

// Question returns the question for a field.
func (c Catalog) Question(f model.Field) (Question, bool) {
	idx, ok := c.byField[f]
	if !ok {
		return Question{}, false
	}
	return c.questions[idx], true
}

// ForStep returns the questions shown on a step, in catalog order.
func (c Catalog) ForStep(stepID string) []Question {
	var out []Question
	for _, q := range c.questions {
		if stepID != "" && q.Step == stepID {
			out = append(out, q)
		}
	}
	return out
}

// ValidOption reports whether value is one of the options of field. An
// empty value clears the answer and is always accepted.
func (c Catalog) ValidOption(f model.Field, value string) bool {
	if value == "" {
		return true
	}
	q, ok := c.Question(f)
	if !ok {
		return false
	}
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// OptionLabel returns the label of value, or value itself when unknown.
func (c Catalog) OptionLabel(f model.Field, value string) string {
	q, ok := c.Question(f)
	if !ok {
		return value
	}
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
