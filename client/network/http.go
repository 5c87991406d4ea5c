package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

const (
	DefaultServerURL      = "http://localhost:8080"
	DefaultRequestTimeout = 5 * time.Second
)

// HTTPSimulation talks to the simulation over JSON/HTTP.
type HTTPSimulation struct {
	baseURL string
	client  *http.Client
}

type NewHTTPSimulationOptions struct {
	BaseURL string
	// Client defaults to an http.Client with DefaultRequestTimeout.
	Client *http.Client
}

func NewHTTPSimulation(opts NewHTTPSimulationOptions) *HTTPSimulation {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &HTTPSimulation{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPSimulation) FetchEntities(ctx context.Context) ([]types.EntitySummary, error) {
	resp := &types.EntitiesResponse{}
	if err := s.do(ctx, http.MethodGet, "/entities", nil, resp); err != nil {
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}
	return resp.Entities, nil
}

func (s *HTTPSimulation) FetchGrid(ctx context.Context) (*types.Grid, error) {
	grid := &types.Grid{}
	if err := s.do(ctx, http.MethodGet, "/grid", nil, grid); err != nil {
		return nil, fmt.Errorf("failed to fetch grid: %w", err)
	}
	if grid.Tiles == nil {
		grid.Tiles = make(map[string]*types.Tile)
	}
	return grid, nil
}

func (s *HTTPSimulation) CreateTile(ctx context.Context, tile types.Tile) (*types.Tile, error) {
	created := &types.Tile{}
	if err := s.do(ctx, http.MethodPost, "/tiles", tile, created); err != nil {
		return nil, fmt.Errorf("failed to create tile %v: %w", tile.Position, err)
	}
	return created, nil
}

func (s *HTTPSimulation) DeleteTile(ctx context.Context, cell types.Cell) error {
	path := fmt.Sprintf("/tiles/%d/%d", cell.X, cell.Y)
	if err := s.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete tile %v: %w", cell, err)
	}
	return nil
}

func (s *HTTPSimulation) MoveEntity(ctx context.Context, entityID string, target types.Cell) (*types.MoveResponse, error) {
	path := fmt.Sprintf("/entities/%s/move", url.PathEscape(entityID))
	resp := &types.MoveResponse{}
	if err := s.do(ctx, http.MethodPost, path, types.MoveRequest{Target: target}, resp); err != nil {
		return nil, fmt.Errorf("failed to move entity %s: %w", entityID, err)
	}
	return resp, nil
}

func (s *HTTPSimulation) ExecuteAttack(ctx context.Context, attackerID, targetID string) (*types.AttackResponse, error) {
	path := fmt.Sprintf("/entities/%s/attack", url.PathEscape(attackerID))
	resp := &types.AttackResponse{}
	if err := s.do(ctx, http.MethodPost, path, types.AttackRequest{TargetID: targetID}, resp); err != nil {
		return nil, fmt.Errorf("failed to execute attack by %s: %w", attackerID, err)
	}
	return resp, nil
}

func (s *HTTPSimulation) RefreshActionEconomy(ctx context.Context, entityID string) (*types.ActionEconomy, error) {
	path := fmt.Sprintf("/entities/%s/refresh", url.PathEscape(entityID))
	resp := &types.ActionEconomy{}
	if err := s.do(ctx, http.MethodPost, path, nil, resp); err != nil {
		return nil, fmt.Errorf("failed to refresh action economy of %s: %w", entityID, err)
	}
	return resp, nil
}

func (s *HTTPSimulation) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(b))
		errResp := &types.ErrorResponse{}
		if json.Unmarshal(b, errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       msg,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
