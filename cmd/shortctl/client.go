package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"guestlink/internal/dto"
	"guestlink/internal/model"
	"guestlink/response"
)

// apiError 服务端返回的非 2xx 响应，Message 为本地化后的错误信息
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type client struct {
	baseURL  string
	language string
	http     *http.Client
}

func newClient(baseURL, language string, timeout time.Duration) *client {
	return &client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *client) Create(ctx context.Context, target string) (*dto.LinkView, error) {
	var view dto.LinkView
	if err := c.do(ctx, http.MethodPost, "/api/guest/create", map[string]string{"url": target}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *client) SetLanding(ctx context.Context, code string, flag bool) (*model.GuestURL, error) {
	body := map[string]any{"code": code, "useLanding": flag}
	var out response.Response[model.GuestURL]
	if err := c.do(ctx, http.MethodPost, "/api/guest/setting", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *client) Resolve(ctx context.Context, code string) (*dto.ResolveResponse, error) {
	var out dto.ResolveResponse
	if err := c.do(ctx, http.MethodGet, "/api/resolve-url/"+url.PathEscape(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e response.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
