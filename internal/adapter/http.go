package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/utils"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

type httpRemoteStore struct {
	client  *utils.HTTPClient
	hashKey string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// It normalises and validates the base URL from cfg.HTTPAddress, configures
// the underlying HTTP client with the resolved base URL and request timeout,
// and initialises the shared HMAC hasher pool used for transport integrity
// hashes.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteStore(cfg config.Remote, log *logger.Logger) (RemoteStore, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid remote http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	utils.InitHasherPool(cfg.HashKey)

	return &httpRemoteStore{
		client:  client,
		hashKey: cfg.HashKey,
		token:   strings.TrimSpace(cfg.AuthToken),
		logger:  log.Component("adapter"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteStore]. It stores token (whitespace-trimmed) for
// use in the Authorization header of all subsequent requests.
func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteStore]. It returns the bearer token currently held
// by the adapter, or an empty string if none has been set.
func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Read implements [RemoteStore]. It POSTs the collection and query criteria
// to POST /api/records/query and returns the decoded records. Returns an
// error if the request, response mapping, or JSON decoding fails.
func (h *httpRemoteStore) Read(ctx context.Context, collection string, query models.RemoteQuery) ([]models.Record, error) {
	req := models.QueryRequest{Collection: collection, Query: query}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/records/query")
	if err != nil {
		return nil, mapTransportError("query request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var qr models.QueryResponse
	if err = json.Unmarshal(resp.Body(), &qr); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	return qr.Records, nil
}

// ReadBatch implements [RemoteStore] and [request.Dispatcher]. It computes a
// transport integrity hash over params, sets the batch length, and POSTs the
// group to POST /api/records/batch. The decoded results come back one per
// param, in param order; the caller is responsible for checking the count.
func (h *httpRemoteStore) ReadBatch(ctx context.Context, endpoint string, params []json.RawMessage) ([]json.RawMessage, error) {
	req := models.BatchRequest{Endpoint: endpoint, Params: params}
	req.Hash = computeTransportHash(req.Params)
	req.Length = len(params)

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/records/batch")
	if err != nil {
		return nil, mapTransportError("batch request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var br models.BatchResponse
	if err = json.Unmarshal(resp.Body(), &br); err != nil {
		return nil, fmt.Errorf("decode batch response: %w", err)
	}

	return br.Results, nil
}

// Write implements [RemoteStore]. It wraps op into a write request carrying
// the operation ID as an idempotency key, computes a transport integrity
// hash over the record, and POSTs it to POST /api/records/write. Returns
// [ErrConflict] (wrapped) when the remote holds a newer version of the
// record.
func (h *httpRemoteStore) Write(ctx context.Context, op models.SyncOperation) error {
	req := models.WriteRequest{
		OpID:       op.ID,
		Kind:       op.Kind,
		Collection: op.Collection,
		RecordID:   op.RecordID,
		Record: &models.Record{
			Collection: op.Collection,
			ID:         op.RecordID,
			Payload:    op.Payload,
			UpdatedAt:  op.EnqueuedAt,
			Deleted:    op.Kind == models.OpDelete,
		},
	}
	req.Hash = computeTransportHash(req.Record)

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/records/write")
	if err != nil {
		return mapTransportError("write request", err)
	}

	return mapHTTPError(resp)
}

// Ping implements [RemoteStore]. It GETs the health endpoint GET /api/ping.
// Any failure, transport-level or HTTP, comes back so the prober can treat
// it as an offline signal.
func (h *httpRemoteStore) Ping(ctx context.Context) error {
	resp, err := h.authedRequest(ctx).Get("/api/ping")
	if err != nil {
		return mapTransportError("ping request", err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok && traceID != "" {
		req.SetHeader(utils.TraceIDHeader, traceID)
	}
	return req
}

func computeTransportHash(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	return hex.EncodeToString(utils.Hash(payload))
}
