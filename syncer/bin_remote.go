package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBinURL = "https://api.npoint.io"

// BinRemote talks to a JSON bin service: POST /bins creates a bin and answers with
// its id, GET and PUT /bins/{id} read and replace it.
type BinRemote struct {
	BaseURL string
	Client  *http.Client
}

func NewBinRemote(baseURL string, timeout time.Duration) *BinRemote {
	if baseURL == "" {
		baseURL = DefaultBinURL
	}
	return &BinRemote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type createBinResponse struct {
	BinID string `json:"binId"`
}

func (b *BinRemote) CreateSession(ctx context.Context, initial Snapshot) (string, error) {
	resp, err := b.do(ctx, http.MethodPost, b.BaseURL+"/bins", initial)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("create bin: %w", err)
	}
	var out createBinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode create bin response: %w", err)
	}
	if out.BinID == "" {
		return "", fmt.Errorf("create bin: response carried no bin id")
	}
	return out.BinID, nil
}

func (b *BinRemote) Pull(ctx context.Context, token string) (*Snapshot, error) {
	resp, err := b.do(ctx, http.MethodGet, b.binURL(token), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("pull bin %s: %w", token, err)
	}
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode bin %s: %w", token, err)
	}
	return &snap, nil
}

func (b *BinRemote) Push(ctx context.Context, token string, snap Snapshot) error {
	resp, err := b.do(ctx, http.MethodPut, b.binURL(token), snap)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrSessionNotFound
	}
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("push bin %s: %w", token, err)
	}
	return nil
}

func (b *BinRemote) binURL(token string) string {
	return b.BaseURL + "/bins/" + token
}

func (b *BinRemote) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
