package voicevox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	client := NewClient("http://localhost:50021", time.Second)
	assert.Equal(t, "http://localhost:50021", client.BaseURL())
}

func TestSpeakers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/speakers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"Zundamon","styles":[{"name":"Normal","id":3},{"name":"Sweet","id":1}]},
			{"name":"Metan","styles":[{"name":"Normal","id":2}]}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	speakers, err := client.Speakers(context.Background())
	require.NoError(t, err)
	require.Len(t, speakers, 2)

	assert.Equal(t, "Zundamon", speakers[0].Name)
	require.Len(t, speakers[0].Styles, 2)
	assert.Equal(t, uint32(3), speakers[0].Styles[0].ID)
	assert.Equal(t, "Zundamon (Normal)", StyleLabel(speakers[0], speakers[0].Styles[0]))
	assert.Equal(t, "Metan (Normal)", StyleLabel(speakers[1], speakers[1].Styles[0]))
}

func TestSpeakersUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *Client
	}{
		{
			name: "connection refused",
			setup: func(t *testing.T) *Client {
				server := httptest.NewServer(http.NotFoundHandler())
				server.Close() // port is now dead
				return NewClient(server.URL, time.Second)
			},
		},
		{
			name: "server error",
			setup: func(t *testing.T) *Client {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "boom", http.StatusInternalServerError)
				}))
				t.Cleanup(server.Close)
				return NewClient(server.URL, time.Second)
			},
		},
		{
			name: "malformed payload",
			setup: func(t *testing.T) *Client {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(`{"not":"an array"}`))
				}))
				t.Cleanup(server.Close)
				return NewClient(server.URL, time.Second)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := tt.setup(t)
			speakers, err := client.Speakers(context.Background())
			assert.Error(t, err)
			assert.Nil(t, speakers)
		})
	}
}

func TestSynthesizeTwoPhase(t *testing.T) {
	var calls []string
	wavData := []byte("RIFF-fake-wav-data")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/audio_query":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Hello world", r.URL.Query().Get("text"))
			assert.Equal(t, "3", r.URL.Query().Get("speaker"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"accent_phrases":[],"speedScale":1.0,"pitchScale":0.0,"volumeScale":1.0}`))
		case "/synthesis":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "3", r.URL.Query().Get("speaker"))

			var query map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
			// The speed must be rewritten, everything else preserved.
			assert.Equal(t, 1.5, query["speedScale"])
			assert.Contains(t, query, "accent_phrases")
			assert.Equal(t, 0.0, query["pitchScale"])

			w.Write(wavData)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	got, err := client.Synthesize(context.Background(), "Hello world", 3, 1.5)
	require.NoError(t, err)
	assert.Equal(t, wavData, got)

	// audio_query must complete before synthesis is issued.
	require.Equal(t, []string{"/audio_query", "/synthesis"}, calls)
}

func TestSynthesizeQueryFailurePreventsSynthesis(t *testing.T) {
	var synthesisCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio_query":
			http.Error(w, "engine exploded", http.StatusInternalServerError)
		case "/synthesis":
			synthesisCalls++
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Synthesize(context.Background(), "Hello", 1, 1.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio_query")
	assert.Zero(t, synthesisCalls, "synthesis must not be issued after a query failure")
}

func TestSynthesizeSynthesisFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio_query":
			w.Write([]byte(`{"speedScale":1.0}`))
		case "/synthesis":
			http.Error(w, "out of memory", http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Synthesize(context.Background(), "Hello", 1, 1.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesis")
}

func TestSynthesizeMalformedQueryDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Synthesize(context.Background(), "Hello", 1, 1.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
