package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyTransport_InvokeSuccess(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPrompt = body["prompt"]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"generated code here"}`))
	}))
	defer server.Close()

	transport := NewProxyTransport(ProxyConfig{BaseURL: server.URL})
	out, err := transport.Invoke(context.Background(), Request{Prompt: "derive AESER"})
	require.NoError(t, err)
	assert.Equal(t, "generated code here", out)
	assert.Equal(t, "derive AESER", gotPrompt)
}

func TestProxyTransport_AcceptsAlternateTextKeys(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"result key", `{"result":"from result"}`, "from result"},
		{"output key", `{"output":"from output"}`, "from output"},
		{"text wins over others", `{"text":"from text","result":"ignored"}`, "from text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			transport := NewProxyTransport(ProxyConfig{BaseURL: server.URL})
			out, err := transport.Invoke(context.Background(), Request{Prompt: "p"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestProxyTransport_Non2xxIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream model unavailable"))
	}))
	defer server.Close()

	transport := NewProxyTransport(ProxyConfig{BaseURL: server.URL})
	_, err := transport.Invoke(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadGateway, terr.Status)
	assert.Equal(t, "upstream model unavailable", terr.Body)
}

func TestProxyTransport_EmptyBodyFieldsIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unrelated":"field"}`))
	}))
	defer server.Close()

	transport := NewProxyTransport(ProxyConfig{BaseURL: server.URL})
	_, err := transport.Invoke(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestProxyTransport_UnconfiguredWithoutBaseURL(t *testing.T) {
	transport := NewProxyTransport(ProxyConfig{})
	assert.False(t, transport.Configured())
}
