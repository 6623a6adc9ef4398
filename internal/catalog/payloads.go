package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed payloads.yaml
var payloadsYAML []byte

// Payload is one injection probe with the family it belongs to.
type Payload struct {
	Category string
	Text     string
}

type payloadFile struct {
	SQL      []string `yaml:"sql"`
	Markup   []string `yaml:"markup"`
	Command  []string `yaml:"command"`
	Format   []string `yaml:"format"`
	Template []string `yaml:"template"`
}

var injectionPayloads = mustLoadPayloads()

func mustLoadPayloads() []Payload {
	var file payloadFile
	if err := yaml.Unmarshal(payloadsYAML, &file); err != nil {
		panic(fmt.Sprintf("catalog: embedded payload corpus is malformed: %v", err))
	}
	groups := []struct {
		name    string
		entries []string
	}{
		{"sql", file.SQL},
		{"markup", file.Markup},
		{"command", file.Command},
		{"format", file.Format},
		{"template", file.Template},
	}
	var out []Payload
	for _, g := range groups {
		if len(g.entries) == 0 {
			panic(fmt.Sprintf("catalog: payload category %q is empty", g.name))
		}
		for _, text := range g.entries {
			out = append(out, Payload{Category: g.name, Text: text})
		}
	}
	return out
}

// InjectionPayloads returns the embedded corpus in file order. The slice is
// shared; callers must not modify it.
func InjectionPayloads() []Payload {
	return injectionPayloads
}

// PayloadCategories returns the category names in file order with their
// payload counts.
func PayloadCategories() map[string]int {
	counts := make(map[string]int, 5)
	for _, p := range injectionPayloads {
		counts[p.Category]++
	}
	return counts
}
