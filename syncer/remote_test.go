package syncer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/scoring"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binServer mimics the JSON bin service in memory.
func binServer(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	bins := map[string][]byte{}
	next := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		body, _ := io.ReadAll(r.Body)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/bins":
			next++
			id := "bin" + string(rune('a'+next))
			bins[id] = body
			_ = json.NewEncoder(w).Encode(map[string]string{"binId": id})
		case strings.HasPrefix(r.URL.Path, "/bins/"):
			id := strings.TrimPrefix(r.URL.Path, "/bins/")
			stored, ok := bins[id]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if r.Method == http.MethodPut {
				bins[id] = body
				w.WriteHeader(http.StatusOK)
				return
			}
			_, _ = w.Write(stored)
		default:
			http.Error(w, "bad request", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Submissions: []scoring.Submission{{ID: "s1", Group: "1", GroupIndex: "2", Scores: scoring.Scores{"1_1": 9}, TotalScore: 9}},
		Judges:      []scoring.Judge{{ID: "j1", Username: "alice"}},
		Version:     1700000000000,
	}
}

func TestBinRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("Happy path - create pull push", func(t *testing.T) {
		remote := NewBinRemote(binServer(t).URL, 5*time.Second)

		token, err := remote.CreateSession(ctx, sampleSnapshot())
		require.NoError(t, err)
		require.NotEmpty(t, token)

		pulled, err := remote.Pull(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, sampleSnapshot(), *pulled)

		updated := sampleSnapshot()
		updated.Version = 2
		require.NoError(t, remote.Push(ctx, token, updated))
		pulled, err = remote.Pull(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, int64(2), pulled.Version)
	})

	t.Run("Happy path - wire field names match legacy bins", func(t *testing.T) {
		raw, err := json.Marshal(sampleSnapshot())
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"candidates":`)
		assert.Contains(t, string(raw), `"judges":`)
		assert.Contains(t, string(raw), `"version":1700000000000`)
	})

	t.Run("Unhappy path - unknown bin", func(t *testing.T) {
		remote := NewBinRemote(binServer(t).URL, 5*time.Second)
		_, err := remote.Pull(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, remote.Push(ctx, "missing", sampleSnapshot()), ErrSessionNotFound)
	})

	t.Run("Unhappy path - server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		remote := NewBinRemote(srv.URL, 5*time.Second)
		_, err := remote.Pull(ctx, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		_, err = remote.CreateSession(ctx, sampleSnapshot())
		assert.Error(t, err)
	})

	t.Run("Unhappy path - create without bin id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := NewBinRemote(srv.URL, time.Second).CreateSession(ctx, sampleSnapshot())
		assert.Error(t, err)
	})
}

func TestRedisRemote(t *testing.T) {
	ctx := context.Background()

	newRemote := func(t *testing.T) (*RedisRemote, *miniredis.Miniredis) {
		mr := miniredis.RunT(t)
		remote, err := NewRedisRemote("redis://" + mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = remote.Close() })
		return remote, mr
	}

	t.Run("Happy path - create pull push", func(t *testing.T) {
		remote, mr := newRemote(t)

		token, err := remote.CreateSession(ctx, sampleSnapshot())
		require.NoError(t, err)
		assert.True(t, mr.Exists("snapshot:"+token))

		pulled, err := remote.Pull(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, sampleSnapshot(), *pulled)

		updated := sampleSnapshot()
		updated.Judges = nil
		require.NoError(t, remote.Push(ctx, token, updated))
		pulled, err = remote.Pull(ctx, token)
		require.NoError(t, err)
		assert.Empty(t, pulled.Judges)
	})

	t.Run("Unhappy path - unknown token", func(t *testing.T) {
		remote, _ := newRemote(t)
		_, err := remote.Pull(ctx, "nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Unhappy path - corrupt snapshot", func(t *testing.T) {
		remote, mr := newRemote(t)
		require.NoError(t, mr.Set("snapshot:bad", "not json"))
		_, err := remote.Pull(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("Unhappy path - unreachable server", func(t *testing.T) {
		_, err := NewRedisRemote("redis://127.0.0.1:1")
		assert.Error(t, err)
	})
}
