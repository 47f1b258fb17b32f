package wire

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name        string
		kind        ResponseKind
		contentType string
		body        string
		want        Payload
	}{
		{
			name:        "plain text body",
			kind:        KindJSON,
			contentType: "text/plain",
			body:        "# Title\n\nbody",
			want:        TextPayload{Text: "# Title\n\nbody", ContentType: "text/plain"},
		},
		{
			name:        "enveloped hit list",
			kind:        KindJSON,
			contentType: "application/json",
			body:        `{"code":200,"status":20000,"data":[{"title":"A","url":"https://a","publishedTime":"2026-01-01","usage":{"tokens":7}},"loose"]}`,
			want: HitListPayload{Hits: []Hit{
				{Title: "A", URL: "https://a", Date: "2026-01-01", Tokens: 7},
				{Raw: "loose"},
			}},
		},
		{
			name:        "enveloped string",
			kind:        KindJSON,
			contentType: "application/json",
			body:        `{"code":200,"status":20000,"data":"hello"}`,
			want:        TextPayload{Text: "hello", ContentType: "application/json"},
		},
		{
			name:        "object without envelope",
			kind:        KindJSON,
			contentType: "application/json",
			body:        `{"data":{"x":1}}`,
			want:        ObjectPayload{Fields: map[string]any{"data": map[string]any{"x": json.Number("1")}}},
		},
		{
			name:        "invalid json falls back to text",
			kind:        KindJSON,
			contentType: "application/json",
			body:        `{broken`,
			want:        TextPayload{Text: "{broken", ContentType: "application/json"},
		},
		{
			name:        "binary request with json error body stays json",
			kind:        KindBinary,
			contentType: "application/json",
			body:        `{"message":"no"}`,
			want:        ObjectPayload{Fields: map[string]any{"message": "no"}},
		},
		{
			name:        "image content type",
			kind:        KindJSON,
			contentType: "image/png",
			body:        "\x89PNG",
			want:        BinaryPayload{Data: []byte("\x89PNG"), ContentType: "image/png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodePayload(tt.kind, tt.contentType, []byte(tt.body))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodePayload() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodePayload_ParsedContent(t *testing.T) {
	p := DecodePayload(KindJSON, "application/json", []byte(`[{"title":"T","parsed":{"content":"inner"}}]`))
	hits, ok := p.(HitListPayload)
	require.True(t, ok)
	require.Len(t, hits.Hits, 1)
	assert.Equal(t, "inner", hits.Hits[0].ParsedContent)
}

func TestStrAndIntOf(t *testing.T) {
	assert.Equal(t, "", Str(nil))
	assert.Equal(t, "12", Str(json.Number("12")))
	assert.Equal(t, "true", Str(true))
	assert.Equal(t, `{"a":1}`, Str(map[string]any{"a": 1}))

	assert.Equal(t, 12, IntOf(json.Number("12")))
	assert.Equal(t, 3, IntOf(json.Number("3.9")))
	assert.Equal(t, 4, IntOf(float64(4)))
	assert.Equal(t, 0, IntOf("4"))
}

func TestCapabilityRequest(t *testing.T) {
	req := &CapabilityRequest{Method: "POST", Headers: map[string]string{"X-No-Cache": "true"}}
	assert.True(t, req.IsPost())
	assert.True(t, req.NoCache())

	req = &CapabilityRequest{Method: "GET"}
	assert.False(t, req.IsPost())
	assert.False(t, req.NoCache())

	assert.Equal(t, "Reader (read_url)", Reader.Label())
	assert.Equal(t, "binary", KindBinary.String())
	assert.Equal(t, "json", KindJSON.String())
}
