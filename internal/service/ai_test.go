package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage_tree/internal/model"
)

// fakeCompletions 模拟 OpenAI 兼容的 chat/completions 接口
func fakeCompletions(t *testing.T, status int, content string, seen *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*seen = append(*seen, body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestAI(t *testing.T, srv *httptest.Server) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(&AIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", Model: "test-model", Temperature: 0.7, TopP: 0.9}, NewNopLogger())
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(&AIConfig{}, NewNopLogger())
	assert.True(t, IsCode(err, ErrConfig))
}

func TestGenerateBio(t *testing.T) {
	var seen []map[string]any
	srv := fakeCompletions(t, http.StatusOK, "  A life well lived.  ", &seen)
	defer srv.Close()

	p := model.InitialPeople()[2]
	bio := newTestAI(t, srv).GenerateBio(context.Background(), p, "James is the child of Shadman and Eleanor.")
	assert.Equal(t, "A life well lived.", bio)

	require.Len(t, seen, 1)
	assert.Equal(t, "test-model", seen[0]["model"])
	assert.InDelta(t, 0.7, seen[0]["temperature"], 1e-6)
	msgs := seen[0]["messages"].([]any)
	prompt := msgs[0].(map[string]any)["content"].(string)
	assert.Contains(t, prompt, "Name: James Heritage")
	assert.Contains(t, prompt, "Occupation: Architect")
	assert.Contains(t, prompt, "Family Context: James is the child of Shadman and Eleanor.")
	assert.NotContains(t, prompt, "Death Date")
}

func TestGenerateBio_Placeholders(t *testing.T) {
	failing := fakeCompletions(t, http.StatusInternalServerError, "", nil)
	defer failing.Close()
	assert.Equal(t, BioUnavailable, newTestAI(t, failing).GenerateBio(context.Background(), model.Person{ID: "1"}, ""))

	empty := fakeCompletions(t, http.StatusOK, "   ", nil)
	defer empty.Close()
	assert.Equal(t, BioEmpty, newTestAI(t, empty).GenerateBio(context.Background(), model.Person{ID: "1"}, ""))
}

func TestBioPrompt_Defaults(t *testing.T) {
	prompt := bioPrompt(model.Person{FirstName: "A", LastName: "B", DeathDate: "1990-01-01"}, "")
	assert.Contains(t, prompt, "Place of Birth: Unknown")
	assert.Contains(t, prompt, "Death Date: 1990-01-01")
	assert.Contains(t, prompt, "Family Context: Part of a cherished family tree.")
}

func TestParseFamilyText(t *testing.T) {
	content := "```json\n" + `{"people":[
		{"id":"p1","firstName":"John","lastName":"Doe","gender":"male","birthDate":"1900-01-01"},
		{"id":"p2","firstName":"Jane","lastName":"Doe","gender":"FEMALE","birthDate":"1925-01-01","fatherId":"p1"}
	]}` + "\n```"
	var seen []map[string]any
	srv := fakeCompletions(t, http.StatusOK, content, &seen)
	defer srv.Close()

	people, err := newTestAI(t, srv).ParseFamilyText(context.Background(), "John Doe had a daughter Jane in 1925.")
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, model.GenderMale, people[0].Gender)
	assert.Equal(t, model.GenderFemale, people[1].Gender)
	assert.Equal(t, "p1", people[1].FatherID)

	require.Len(t, seen, 1)
	format := seen[0]["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
}

func TestParseFamilyText_Failures(t *testing.T) {
	ctx := context.Background()

	failing := fakeCompletions(t, http.StatusBadGateway, "", nil)
	defer failing.Close()
	_, err := newTestAI(t, failing).ParseFamilyText(ctx, "text")
	assert.True(t, IsCode(err, ErrExternal))

	garbage := fakeCompletions(t, http.StatusOK, "I could not find anyone.", nil)
	defer garbage.Close()
	_, err = newTestAI(t, garbage).ParseFamilyText(ctx, "text")
	assert.True(t, IsCode(err, ErrExternal))

	dupes := fakeCompletions(t, http.StatusOK, `{"people":[{"id":"a"},{"id":"a"}]}`, nil)
	defer dupes.Close()
	_, err = newTestAI(t, dupes).ParseFamilyText(ctx, "text")
	assert.True(t, IsCode(err, ErrExternal))

	_, err = newTestAI(t, dupes).ParseFamilyText(ctx, "  ")
	assert.True(t, IsCode(err, ErrValidation))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1} `))
}
