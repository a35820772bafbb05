// Package prompts holds the prompt templates sent to the generative upstream.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Template identifiers.
const (
	WorkoutPlan         = "workout_plan"
	DietPlan            = "diet_plan"
	MotivationalTips    = "motivational_tips"
	ExerciseImage       = "exercise_image"
	ExerciseImageSimple = "exercise_image_simple"
	MealImage           = "meal_image"
	MealImageSimple     = "meal_image_simple"
)

//go:embed templates.yaml
var embedded []byte

// ErrUnknownTemplate is returned when rendering an identifier the catalog does not hold.
var ErrUnknownTemplate = errors.New("unknown prompt template")

type catalogFile struct {
	Version   int             `yaml:"version"`
	Templates []templateEntry `yaml:"templates"`
}

type templateEntry struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Text        string `yaml:"text"`
}

// Catalog renders prompt templates by identifier.
type Catalog struct {
	templates map[string]*template.Template
}

// required lists the identifiers the generation components render.
var required = []string{
	WorkoutPlan, DietPlan, MotivationalTips,
	ExerciseImage, ExerciseImageSimple, MealImage, MealImageSimple,
}

// Load parses the embedded catalog and checks that every required template is present.
func Load() (*Catalog, error) {
	c, err := Parse(embedded)
	if err != nil {
		return nil, err
	}
	if err := c.Require(required...); err != nil {
		return nil, err
	}
	return c, nil
}

// Require reports the first identifier the catalog does not hold.
func (c *Catalog) Require(ids ...string) error {
	for _, id := range ids {
		if _, ok := c.templates[id]; !ok {
			return fmt.Errorf("%w: %s (catalog has %s)", ErrUnknownTemplate, id, strings.Join(c.IDs(), ", "))
		}
	}
	return nil
}

// MustLoad is Load for program start-up; it panics on a broken embedded catalog.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode prompt catalog: %w", err)
	}

	c := &Catalog{templates: make(map[string]*template.Template, len(file.Templates))}
	for _, entry := range file.Templates {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, errors.New("prompt template without id")
		}
		if _, dup := c.templates[id]; dup {
			return nil, fmt.Errorf("duplicate prompt template %q", id)
		}
		tmpl, err := template.New(id).Option("missingkey=error").Parse(entry.Text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt template %q: %w", id, err)
		}
		c.templates[id] = tmpl
	}
	return c, nil
}

// Render executes the named template with params. Missing parameters are errors.
func (c *Catalog) Render(id string, params map[string]any) (string, error) {
	tmpl, ok := c.templates[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, params); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", id, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// IDs lists the catalog identifiers in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
