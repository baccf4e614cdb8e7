package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacktop/mcp-speak/internal/voicevox"
)

func uint32Ptr(v uint32) *uint32 { return &v }

func testCatalog() []voicevox.Speaker {
	return []voicevox.Speaker{
		{Name: "Zundamon", Styles: []voicevox.Style{
			{Name: "Normal", ID: 3},
			{Name: "Sweet", ID: 1},
		}},
		{Name: "Metan", Styles: []voicevox.Style{
			{Name: "Normal", ID: 2},
		}},
	}
}

func TestSpeakerChoiceSchemaEnumeratesEveryStyle(t *testing.T) {
	schema := buildSpeakerChoiceSchema(testCatalog(), nil)

	speaker := schema.Properties["speaker"]
	require.NotNil(t, speaker)
	require.Len(t, speaker.OneOf, 3, "one choice per (speaker, style) pair")

	require.NotNil(t, speaker.OneOf[0].Const)
	assert.Equal(t, uint32(3), *speaker.OneOf[0].Const)
	assert.Equal(t, "Zundamon (Normal)", speaker.OneOf[0].Title)
	assert.Equal(t, "Zundamon (Sweet)", speaker.OneOf[1].Title)
	assert.Equal(t, "Metan (Normal)", speaker.OneOf[2].Title)
}

func TestSpeakerChoiceSchemaDefaultPolicy(t *testing.T) {
	tests := []struct {
		name        string
		speakers    []voicevox.Speaker
		defaultID   *uint32
		wantDefault string
	}{
		{"no config no catalog", nil, nil, "1"},
		{"no config with catalog", testCatalog(), nil, "1"},
		{"configured default in catalog", testCatalog(), uint32Ptr(3), "3"},
		// The configured id is emitted verbatim even when the catalog
		// does not list it.
		{"configured default not in catalog", testCatalog(), uint32Ptr(999), "999"},
		{"configured default without catalog", nil, uint32Ptr(47), "47"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := buildSpeakerChoiceSchema(tt.speakers, tt.defaultID)
			speaker := schema.Properties["speaker"]
			require.NotNil(t, speaker)
			assert.Equal(t, json.RawMessage(tt.wantDefault), speaker.Default)
		})
	}
}

func TestSpeakerChoiceSchemaOfflineFallback(t *testing.T) {
	schema := buildSpeakerChoiceSchema(nil, nil)

	speaker := schema.Properties["speaker"]
	require.NotNil(t, speaker)
	assert.Equal(t, "integer", speaker.Type)
	assert.Empty(t, speaker.OneOf, "offline schema must not enumerate choices")
	assert.Equal(t, json.RawMessage("1"), speaker.Default)
}

func TestSpeakerChoiceSchemaCommonFields(t *testing.T) {
	for _, speakers := range [][]voicevox.Speaker{nil, testCatalog()} {
		schema := buildSpeakerChoiceSchema(speakers, nil)

		assert.Equal(t, "object", schema.Type)
		assert.Equal(t, []string{"text"}, schema.Required)
		assert.Len(t, schema.Properties, 3, "only text, speaker, and speed")

		text := schema.Properties["text"]
		require.NotNil(t, text)
		assert.Equal(t, "string", text.Type)

		speed := schema.Properties["speed"]
		require.NotNil(t, speed)
		assert.Equal(t, "number", speed.Type)
		assert.Equal(t, json.RawMessage("1"), speed.Default)
		assert.Empty(t, speed.OneOf, "speed is never catalog-constrained")
	}
}

func TestSpeakerChoiceSchemaStartupScenario(t *testing.T) {
	// Catalog reports a single Zundamon style with id 3, config unset:
	// the single choice carries value 3 and the default stays 1.
	schema := buildSpeakerChoiceSchema([]voicevox.Speaker{
		{Name: "Zundamon", Styles: []voicevox.Style{{Name: "Normal", ID: 3}}},
	}, nil)

	speaker := schema.Properties["speaker"]
	require.NotNil(t, speaker)
	require.Len(t, speaker.OneOf, 1)
	require.NotNil(t, speaker.OneOf[0].Const)
	assert.Equal(t, uint32(3), *speaker.OneOf[0].Const)
	assert.Equal(t, json.RawMessage("1"), speaker.Default)
}

func TestSaySchema(t *testing.T) {
	schema := buildSaySchema()

	assert.Equal(t, []string{"text"}, schema.Required)
	require.NotNil(t, schema.Properties["voice"])
	assert.Equal(t, "string", schema.Properties["voice"].Type)
	require.NotNil(t, schema.Properties["speed"])
	assert.Equal(t, "integer", schema.Properties["speed"].Type)
}
