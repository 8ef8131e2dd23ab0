package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContent(t *testing.T) {
	long := "Acme Corp is a regional logistics provider with 40 staff."

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "content field", body: `{"content":"` + long + `"}`, want: long},
		{name: "research field", body: `{"research":"` + long + `"}`, want: long},
		{name: "profile research field", body: `{"profile_research":"` + long + `"}`, want: long},
		{name: "case insensitive key", body: `{"Output":"` + long + `"}`, want: long},
		{name: "priority order", body: `{"text":"this text is long enough to count","content":"` + long + `"}`, want: long},
		{name: "short value skipped", body: `{"content":"too short","summary":"` + long + `"}`, want: long},
		{name: "n8n array wrapper", body: `[{"output":"` + long + `"}]`, want: long},
		{name: "nested data object", body: `{"data":{"result":"` + long + `"}}`, want: long},
		{name: "json string literal", body: `"` + long + `"`, want: long},
		{name: "plain text unchanged", body: "Here is your research:\nAcme is great.", want: "Here is your research:\nAcme is great."},
		{name: "html unchanged", body: "<html><body><p>Acme</p></body></html>", want: "<html><body><p>Acme</p></body></html>"},
		{name: "no usable field stringified", body: `{ "status": "ok", "count": 2 }`, want: `{"status":"ok","count":2}`},
		{name: "only short fields stringified", body: `{"content":"short"}`, want: `{"content":"short"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractContent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractContent_CaseVariantsPickStableKey(t *testing.T) {
	body := []byte(`{"Content":"the mixed case variant of the content key","CONTENT":"the upper case variant of the content key"}`)
	for i := 0; i < 50; i++ {
		got, err := ExtractContent(body)
		require.NoError(t, err)
		require.Equal(t, "the upper case variant of the content key", got)
	}

	got, err := ExtractContent([]byte(`{"CONTENT":"the upper case variant of the content key","content":"the exact lower case content key wins"}`))
	require.NoError(t, err)
	assert.Equal(t, "the exact lower case content key wins", got)
}

func TestExtractContent_Empty(t *testing.T) {
	_, err := ExtractContent([]byte("  \n "))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestExtractObject(t *testing.T) {
	obj, ok := ExtractObject([]byte(`[{"json":{"email":"jane@acme.test"}}]`))
	require.True(t, ok)
	assert.Equal(t, "jane@acme.test", obj.Get("email").String())

	obj, ok = ExtractObject([]byte(`{"data":{"headline":"CTO"}}`))
	require.True(t, ok)
	assert.Equal(t, "CTO", obj.Get("headline").String())

	obj, ok = ExtractObject([]byte(`{"email":"a@b.test","data":"plain"}`))
	require.True(t, ok)
	assert.Equal(t, "a@b.test", obj.Get("email").String())

	_, ok = ExtractObject([]byte(`not json`))
	assert.False(t, ok)

	_, ok = ExtractObject([]byte(`[]`))
	assert.False(t, ok)
}
