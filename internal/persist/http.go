/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goalbumstudio/internal/domain"
)

// Client is a minimal HTTP provider for the hosted album API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new API client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

var _ Provider = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) (int, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return 0, err
	}
	var rd *bytes.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return resp.StatusCode, nil
	}
	dec := json.NewDecoder(resp.Body)
	return resp.StatusCode, dec.Decode(dest)
}

// Load fetches the album document by id.
func (c *Client) Load(ctx context.Context, id string) (*domain.Album, error) {
	var al domain.Album
	status, err := c.do(ctx, http.MethodGet, "/api/albums/"+url.PathEscape(id), nil, &al)
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &al, nil
}

// Save replaces the stored album document.
func (c *Client) Save(ctx context.Context, al *domain.Album) error {
	body, err := json.Marshal(al)
	if err != nil {
		return fmt.Errorf("encode album: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/api/albums/"+url.PathEscape(al.ID), body, nil)
	return err
}
