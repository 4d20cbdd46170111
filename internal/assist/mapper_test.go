package assist

import (
	"context"
	"errors"
	"testing"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

type fakeSender struct {
	reply    string
	err      error
	params   anthropic.MessageNewParams
	deadline bool
}

func (f *fakeSender) New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.params = body
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: f.reply}},
	}, nil
}

func testRequest() core.MappingRequest {
	return core.MappingRequest{
		Headers: []string{"ServiceID", "Customer", "ysnPrint"},
		Fields: []core.FieldDescriptor{
			{Name: "service_id", Label: "Service ID", Description: "Unique service identifier or service number", Required: true},
			{Name: "site_name", Label: "Site Name", Description: "Customer name, business name, or site name", Required: true},
			{Name: "notes", Label: "Notes"},
		},
		Ignored: []string{"ysnPrint", "RunTag"},
	}
}

func TestSuggestMapping(t *testing.T) {
	sender := &fakeSender{reply: "Here you go:\n```json\n{\"ServiceID\": \"service_id\", \"Customer\": \"site_name\", \"ysnPrint\": \"skip\"}\n```"}
	m := newMapper(sender, Config{Model: "claude-test", MaxTokens: 256, Timeout: time.Second})

	got, err := m.SuggestMapping(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"ServiceID": "service_id",
		"Customer":  "site_name",
		"ysnPrint":  "skip",
	}, got)

	assert.Equal(t, anthropic.Model("claude-test"), sender.params.Model)
	assert.Equal(t, int64(256), sender.params.MaxTokens)
	require.Len(t, sender.params.System, 1)
	assert.Equal(t, systemPrompt, sender.params.System[0].Text)
	require.Len(t, sender.params.Messages, 1)
	assert.True(t, sender.deadline, "request context should carry the timeout")
}

func TestSuggestMapping_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sender *fakeSender
	}{
		{"transport error", &fakeSender{err: errors.New("503 overloaded")}},
		{"no json", &fakeSender{reply: "I cannot help with that."}},
		{"not a string map", &fakeSender{reply: `{"ServiceID": 7}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMapper(tt.sender, Config{Model: "m"})
			_, err := m.SuggestMapping(context.Background(), testRequest())
			assert.Error(t, err)
		})
	}
}

func TestSuggestMapping_NoHeaders(t *testing.T) {
	sender := &fakeSender{err: errors.New("should not be called")}
	m := newMapper(sender, Config{Model: "m"})

	got, err := m.SuggestMapping(context.Background(), core.MappingRequest{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewMapper_DefaultMaxTokens(t *testing.T) {
	m := newMapper(&fakeSender{}, Config{Model: "m"})
	assert.Equal(t, 1024, m.cfg.MaxTokens)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(testRequest())

	assert.Contains(t, p, "CSV Headers to map: ServiceID, Customer, ysnPrint")
	assert.Contains(t, p, "- service_id: Unique service identifier or service number")
	assert.Contains(t, p, "- notes: No description")
	assert.Contains(t, p, `ALWAYS map to "skip": ysnPrint, RunTag`)
	assert.Contains(t, p, `If no good semantic match exists, map to "skip"`)
	assert.Contains(t, p, `{"ServiceID": "service_id", "Unrelated": "skip"}`)
}
