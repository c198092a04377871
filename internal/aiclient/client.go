// Package aiclient talks to the AI chat service. The service is opaque: a
// conversation history and a user message go in, a reply string comes out.
// No retry or backoff is attempted here.
package aiclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fitvault/fitvault/internal/models"
)

const chatPath = "/api/chat"

// Client posts chat requests against a configured base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client. caFile optionally pins the service CA; an empty
// path uses the system pool.
func New(baseURL, caFile string, timeout time.Duration) (*Client, error) {
	client := &http.Client{Timeout: timeout}

	if caFile != "" {
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		client.Transport = &http.Transport{TLSClientConfig: &tls.Config{RootCAs: caPool}}
	}

	return &Client{baseURL: baseURL, http: client}, nil
}

type chatRequest struct {
	History []models.ChatMessage `json:"history"`
	Message string               `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Send submits the conversation and returns the assistant's reply.
func (c *Client) Send(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	body, err := json.Marshal(chatRequest{History: history, Message: message})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat service returned %d: %s", resp.StatusCode, string(data))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Reply, nil
}
