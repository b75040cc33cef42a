package tcgdex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/holopack/holopack/config"
)

func newTestClient(serverURL string, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(serverURL),
		WithRateLimit(1000),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	}
	return NewClient(append(base, opts...)...)
}

func TestNewClient(t *testing.T) {
	c := NewClient()

	assert.Equal(t, config.DefaultFeedURL, c.baseURL)
	assert.Equal(t, config.DefaultFeedLimit, c.limit)
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.rateLimiter)
	assert.Equal(t, "https://api.tcgdex.net/v2/en/cards/base1-4", c.endpoint("cards", "base1-4"))
}

func TestClient_FetchCards(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/en/cards", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"base1-4","localId":"4","name":"Charizard","image":"https://assets.tcgdex.net/en/base/base1/4"},
			{"id":"base1-58","localId":"58","name":"Pikachu"},
			{"id":"base1-99","localId":"99","name":"Ignored"}
		]`))
	})
	mux.HandleFunc("/v2/en/cards/base1-4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id":"base1-4","localId":"4","name":"Charizard",
			"image":"https://assets.tcgdex.net/en/base/base1/4",
			"rarity":"Rare","types":["Fire"],
			"set":{"id":"base1","name":"Base Set"},
			"abilities":[{"type":"Pokemon Power","name":"Energy Burn","effect":"Turn energy into fire."}],
			"attacks":[{"name":"Fire Spin","damage":100,"effect":"Discard 2 Energy."}]
		}`))
	})
	mux.HandleFunc("/v2/en/cards/base1-58", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(server.URL, WithLimit(2))
	cards, err := c.FetchCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 2)

	charizard := cards[0]
	assert.Equal(t, "base1-4", charizard.ID)
	assert.Equal(t, "4", charizard.Number)
	assert.Equal(t, "Fire", charizard.Type)
	assert.Equal(t, "Rare", charizard.Rarity)
	assert.Equal(t, "Base Set", charizard.Set)
	assert.Equal(t, "https://assets.tcgdex.net/en/base/base1/4/high.png", charizard.Image)
	require.Len(t, charizard.Abilities, 2)
	assert.Equal(t, "Energy Burn", charizard.Abilities[0].Name)
	assert.Equal(t, "100", charizard.Abilities[1].Damage)

	pikachu := cards[1]
	assert.Equal(t, "Pikachu", pikachu.Name)
	assert.Equal(t, config.PlaceholderImage, pikachu.Image)
	assert.Equal(t, config.DefaultCardType, pikachu.Type)
	assert.Equal(t, config.DefaultRarity, pikachu.Rarity)
	assert.Equal(t, config.DefaultSetName, pikachu.Set)
}

func TestClient_RetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"id":"a","localId":"1","name":"A"}]`))
	}))
	defer server.Close()

	briefs, err := newTestClient(server.URL).ListCards(context.Background())
	require.NoError(t, err)
	assert.Len(t, briefs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchCards(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(config.FeedMaxRetries+1), calls.Load())
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCard(context.Background(), "nope")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad language", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListCards(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want FlexString
	}{
		{in: `{"damage":30}`, want: "30"},
		{in: `{"damage":"30+"}`, want: "30+"},
		{in: `{"damage":"20×"}`, want: "20×"},
		{in: `{"damage":null}`, want: ""},
		{in: `{}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a Attack
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a.Damage)
		})
	}

	var a Attack
	assert.Error(t, json.Unmarshal([]byte(`{"damage":true}`), &a))
}
