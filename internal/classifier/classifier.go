// Package classifier decides which beneficiary group a donation suits.
package classifier

import (
	"context"
	"strings"

	"secondserving/internal/models"
)

type Classifier interface {
	Classify(ctx context.Context, category, description string) (models.TargetGroup, error)
}

// New picks the classifier for a deployment: the Groq model when apiKey is
// set, otherwise the keyword rules. Groq failures are returned unchanged so the
// caller can fall back to everyone rather than to a keyword guess.
func New(apiKey, baseURL, model, rulesFile string) (Classifier, error) {
	if strings.TrimSpace(apiKey) != "" {
		return NewGroq(apiKey, baseURL, model), nil
	}
	return LoadRules(rulesFile)
}

// normalizeAnswer maps free text to a group; anything unrecognised is everyone.
func normalizeAnswer(answer string) models.TargetGroup {
	answer = strings.ToLower(strings.TrimSpace(answer))
	answer = strings.Trim(answer, "\"'.! \n")
	if group, ok := models.ParseTargetGroup(answer); ok {
		return group
	}
	return models.GroupEveryone
}
