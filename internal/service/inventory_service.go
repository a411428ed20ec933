package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// InventoryService reads the product inventory from the upstream API.
type InventoryService struct {
	URL    string
	Client *http.Client
}

// Fetch returns the upstream JSON body unchanged.
func (s *InventoryService) Fetch(ctx context.Context) (json.RawMessage, error) {
	if s.URL == "" {
		return nil, errors.New("inventory URL not configured")
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("inventory upstream returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("inventory upstream returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
