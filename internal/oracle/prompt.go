// internal/oracle/prompt.go
package oracle

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/starwars.yaml
var defaultPromptPack []byte

// Example is a worked prompt with the SQL it produced.
type Example struct {
	Prompt  string `yaml:"prompt"`
	SQL     string `yaml:"sql"`
	Correct bool   `yaml:"correct"`
}

// PromptPack is the few-shot material sent with every question.
type PromptPack struct {
	Name          string    `yaml:"name"`
	Instructions  string    `yaml:"instructions"`
	ExamplesIntro string    `yaml:"examples_intro"`
	Examples      []Example `yaml:"examples"`
	Summary       string    `yaml:"summary"`
	Schema        string    `yaml:"schema"`
}

func ParsePromptPack(data []byte) (*PromptPack, error) {
	var pack PromptPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse prompt pack: %w", err)
	}
	if strings.TrimSpace(pack.Instructions) == "" {
		return nil, fmt.Errorf("prompt pack %q has no instructions", pack.Name)
	}
	return &pack, nil
}

// LoadPromptPack reads the pack at path, or the embedded Star Wars pack when
// path is empty.
func LoadPromptPack(path string) (*PromptPack, error) {
	if path == "" {
		return DefaultPromptPack(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt pack: %w", err)
	}
	return ParsePromptPack(data)
}

func DefaultPromptPack() *PromptPack {
	pack, err := ParsePromptPack(defaultPromptPack)
	if err != nil {
		panic(err)
	}
	return pack
}

// SystemPrompt renders instructions, examples and the given schema text.
func (p *PromptPack) SystemPrompt(schema string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.Instructions))
	b.WriteString("\n\n")

	if len(p.Examples) > 0 {
		if p.ExamplesIntro != "" {
			b.WriteString(strings.TrimSpace(p.ExamplesIntro))
			b.WriteString("\n\n")
		}
		for i, ex := range p.Examples {
			verdict := "incorrect"
			if ex.Correct {
				verdict = "correct"
			}
			fmt.Fprintf(&b, "PROMPT%d: %q\ngenerated this %s response:\n%s\n\n", i+1, ex.Prompt, verdict, strings.TrimSpace(ex.SQL))
		}
	}

	b.WriteString("Here is the database schema:\n")
	b.WriteString(strings.TrimSpace(schema))
	return b.String()
}
