package classifier

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"secondserving/internal/models"
)

//go:embed default_rules.yaml
var defaultRules []byte

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	Name  string `yaml:"name"`
	Group string `yaml:"group"`
	When  string `yaml:"when"`
}

type compiledRule struct {
	name    string
	group   models.TargetGroup
	program *exprvm.Program
}

// Rules evaluates keyword expressions in order. The first rule that matches
// decides the group; no match means everyone.
type Rules struct {
	rules []compiledRule
}

// LoadRules reads path, or the built-in rule set when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return ParseRules(defaultRules)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse classifier rules: %w", err)
	}

	out := &Rules{rules: make([]compiledRule, 0, len(file.Rules))}
	for _, spec := range file.Rules {
		group, ok := models.ParseTargetGroup(spec.Group)
		if !ok {
			return nil, fmt.Errorf("rule %q: unknown group %q", spec.Name, spec.Group)
		}
		program, err := exprlang.Compile(spec.When,
			exprlang.Env(ruleEnv("", "")),
			exprlang.AsBool(),
			exprlang.Function("mentions", mentions, new(func(string, ...string) bool)),
		)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
		}
		out.rules = append(out.rules, compiledRule{name: spec.Name, group: group, program: program})
	}
	return out, nil
}

func ruleEnv(category, description string) map[string]any {
	category = strings.ToLower(strings.TrimSpace(category))
	description = strings.ToLower(strings.TrimSpace(description))
	return map[string]any{
		"category":    category,
		"description": description,
		"text":        strings.TrimSpace(category + " " + description),
	}
}

func mentions(params ...any) (any, error) {
	if len(params) == 0 {
		return false, errors.New("mentions: missing text")
	}
	text, _ := params[0].(string)
	for _, p := range params[1:] {
		if word, ok := p.(string); ok && word != "" && strings.Contains(text, strings.ToLower(word)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Rules) Classify(_ context.Context, category, description string) (models.TargetGroup, error) {
	env := ruleEnv(category, description)
	for _, rule := range r.rules {
		out, err := exprlang.Run(rule.program, env)
		if err != nil {
			return "", fmt.Errorf("rule %q: %w", rule.name, err)
		}
		if matched, _ := out.(bool); matched {
			return rule.group, nil
		}
	}
	return models.GroupEveryone, nil
}
