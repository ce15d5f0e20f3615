package payload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServerInfo describes a live Payload instance.
type ServerInfo struct {
	PayloadVersion string `json:"payloadVersion"`
	ServerURL      string `json:"serverURL"`
	AdminURL       string `json:"adminURL"`
}

// FieldInfo is a field as reported by a live instance.
type FieldInfo struct {
	Name      string                 `json:"name"`
	Type      string                 `json:"type"`
	Required  bool                   `json:"required"`
	Unique    bool                   `json:"unique"`
	Localized bool                   `json:"localized"`
	Admin     map[string]interface{} `json:"admin,omitempty"`
}

// CollectionInfo is a collection schema as reported by a live instance.
type CollectionInfo struct {
	Slug       string            `json:"slug"`
	Labels     map[string]string `json:"labels,omitempty"`
	Fields     []FieldInfo       `json:"fields"`
	Timestamps bool              `json:"timestamps"`
}

// GlobalInfo is a global schema as reported by a live instance.
type GlobalInfo struct {
	Slug   string      `json:"slug"`
	Label  string      `json:"label,omitempty"`
	Fields []FieldInfo `json:"fields"`
}

// Client talks to a running Payload CMS instance over its REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client for the given connection string. A bare
// host:port gets an http:// prefix.
func NewClient(connectionString, apiKey string) *Client {
	baseURL := connectionString
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// BaseURL returns the normalized base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Payload at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Payload API returned status %d for %s", resp.StatusCode, path)
	}

	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

// TestConnection probes the instance and reports its version and URLs.
func (c *Client) TestConnection(ctx context.Context) (*ServerInfo, error) {
	var body struct {
		Version string `json:"version"`
	}
	if err := c.get(ctx, "/api/payload-info", &body); err != nil {
		return nil, err
	}
	version := body.Version
	if version == "" {
		version = "unknown"
	}
	return &ServerInfo{
		PayloadVersion: version,
		ServerURL:      c.baseURL,
		AdminURL:       c.baseURL + "/admin",
	}, nil
}

// GetCollection fetches a collection schema by slug.
func (c *Client) GetCollection(ctx context.Context, slug string) (*CollectionInfo, error) {
	var info CollectionInfo
	if err := c.get(ctx, "/api/"+slug, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch collection %s: %w", slug, err)
	}
	if info.Slug == "" {
		info.Slug = slug
	}
	return &info, nil
}

// ListCollections returns the slugs of every collection the instance
// exposes. Both {"collections": [...]} envelopes and bare arrays are
// accepted.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/collections", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to list collections: HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Collections []string `json:"collections"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Collections != nil {
		return envelope.Collections, nil
	}
	var bare []string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("unexpected collections response shape")
}

// GetGlobal fetches a global schema by slug.
func (c *Client) GetGlobal(ctx context.Context, slug string) (*GlobalInfo, error) {
	var info GlobalInfo
	if err := c.get(ctx, "/api/globals/"+slug, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch global %s: %w", slug, err)
	}
	if info.Slug == "" {
		info.Slug = slug
	}
	return &info, nil
}

// ValidateCollectionConfig compares a proposed collection config against
// the live schema and reports differences.
func (c *Client) ValidateCollectionConfig(ctx context.Context, slug string, config map[string]interface{}) ([]string, error) {
	live, err := c.GetCollection(ctx, slug)
	if err != nil {
		return nil, err
	}

	var issues []string

	if proposed, ok := config["slug"].(string); ok && proposed != live.Slug {
		issues = append(issues, fmt.Sprintf("slug mismatch: config has %q, live instance has %q", proposed, live.Slug))
	}

	liveFields := make(map[string]FieldInfo, len(live.Fields))
	for _, f := range live.Fields {
		liveFields[f.Name] = f
	}

	fields, _ := config["fields"].([]interface{})
	for _, f := range fields {
		field, ok := f.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := field["name"].(string)
		if name == "" {
			continue
		}
		liveField, exists := liveFields[name]
		if !exists {
			issues = append(issues, fmt.Sprintf("field %q is not present in the live schema", name))
			continue
		}
		if fieldType, ok := field["type"].(string); ok && fieldType != liveField.Type {
			issues = append(issues, fmt.Sprintf("field %q type mismatch: config has %q, live instance has %q",
				name, fieldType, liveField.Type))
		}
	}

	return issues, nil
}
