package classifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"secondserving/internal/models"
)

func TestGroqParsesAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, gjson.GetBytes(body, "messages.0.content").String(), "Category: chocolate cake")
		assert.Contains(t, gjson.GetBytes(body, "messages.0.content").String(), "No description provided")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" \"Young.\" "}}]}`))
	}))
	defer srv.Close()

	group, err := NewGroq("key", srv.URL+"/", "llama").Classify(context.Background(), "chocolate cake", "")
	require.NoError(t, err)
	assert.Equal(t, models.GroupYoung, group)
}

func TestGroqUnknownAnswerIsEveryone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"elderly"}}]}`))
	}))
	defer srv.Close()

	group, err := NewGroq("key", srv.URL, "llama").Classify(context.Background(), "soup", "")
	require.NoError(t, err)
	assert.Equal(t, models.GroupEveryone, group)
}

func TestGroqErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := NewGroq("key", srv.URL, "llama").Classify(context.Background(), "soup", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestDefaultRules(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)

	cases := []struct {
		category, description string
		want                  models.TargetGroup
	}{
		{"Chocolate Cake", "", models.GroupYoung},
		{"snacks", "cheese pizza slices", models.GroupYoung},
		{"cooked rice", "", models.GroupEveryone},
		{"mixed", "", models.GroupEveryone},
	}
	for _, tc := range cases {
		got, err := rules.Classify(context.Background(), tc.category, tc.description)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.category)
	}
}

func TestParseRulesRejectsBadInput(t *testing.T) {
	_, err := ParseRules([]byte("rules:\n  - name: x\n    group: adults\n    when: 'true'\n"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("rules:\n  - name: x\n    group: young\n    when: 'text +'\n"))
	assert.Error(t, err)
}

func TestNewUsesGroqAloneWhenKeySet(t *testing.T) {
	cl, err := New("key", "http://127.0.0.1:1", "llama", "")
	require.NoError(t, err)
	require.IsType(t, &Groq{}, cl)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	group, err := cl.Classify(ctx, "chocolate cake", "")
	assert.Error(t, err, "an unreachable model must not answer with a keyword guess")
	assert.Empty(t, group)
}

func TestNewFallsBackToRulesWithoutKey(t *testing.T) {
	cl, err := New("", "", "", "")
	require.NoError(t, err)

	group, err := cl.Classify(context.Background(), "chocolate cake", "")
	require.NoError(t, err)
	assert.Equal(t, models.GroupYoung, group)
}
