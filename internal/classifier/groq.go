package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"secondserving/internal/models"
)

const groqPrompt = `Analyze this food donation and respond with ONLY one word - "young", or "everyone".
Respond "young" if younger people enjoy this food more, and "everyone" if all age groups equally prefer it.
- Category: %s
- Description: %s`

// Groq asks an OpenAI-compatible chat completion endpoint for the group.
type Groq struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGroq(apiKey, baseURL, model string) *Groq {
	return &Groq{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func (g *Groq) Classify(ctx context.Context, category, description string) (models.TargetGroup, error) {
	if strings.TrimSpace(description) == "" {
		description = "No description provided"
	}
	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: fmt.Sprintf(groqPrompt, strings.TrimSpace(category), strings.TrimSpace(description)),
		}},
		Temperature: 0.2,
		MaxTokens:   10,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("groq read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error.message").String()
		return "", fmt.Errorf("groq status %d: %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", errors.New("groq: response has no choices")
	}
	return normalizeAnswer(content.String()), nil
}
