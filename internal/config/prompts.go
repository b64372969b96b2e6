package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptProfile overrides the default summarization prompts.
// Empty fields keep the built-in defaults.
//
//	prompts:
//	  system: "You summarize customer reviews for a product page."
//	  partial: |
//	    Part {{.Index}} of {{.Total}}. Summarize:
//	    {{.Reviews}}
//	  final: |
//	    Merge into at most {{.Bullets}} bullets:
//	    {{join .Partials "\n\n"}}
//	  final_bullets: 6
type PromptProfile struct {
	Prompts struct {
		System       string `yaml:"system"`
		Partial      string `yaml:"partial"`
		Final        string `yaml:"final"`
		FinalBullets int    `yaml:"final_bullets"`
	} `yaml:"prompts"`
}

// LoadPromptProfile loads a prompt profile from a YAML file.
// The path comes from PROMPT_CONFIG_FILE, which is operator controlled.
func LoadPromptProfile(path string) (*PromptProfile, error) {
	// #nosec G304 -- path is provided by trusted source (deployment env), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt profile: %w", err)
	}

	var profile PromptProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse prompt profile: %w", err)
	}

	if err := validatePromptProfile(&profile); err != nil {
		return nil, fmt.Errorf("prompt profile validation failed: %w", err)
	}

	return &profile, nil
}

func validatePromptProfile(p *PromptProfile) error {
	if p.Prompts.FinalBullets < 0 {
		return fmt.Errorf("final_bullets must not be negative")
	}
	if p.Prompts.FinalBullets > 50 {
		return fmt.Errorf("final_bullets must be at most 50")
	}
	return nil
}
