// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/prefetch"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/store"
)

// RegisterRoute binds route to a set of read keys. Prefetching the route
// resolves every key through Read, which warms the result cache and the
// local mirror as a side effect. A record absent everywhere is skipped, not
// a prefetch failure.
func (a *App) RegisterRoute(route string, keys ...string) {
	ks := append([]string(nil), keys...)

	a.prefetch.RegisterRoute(route, func(ctx context.Context) (any, error) {
		data := make(map[string]json.RawMessage, len(ks))
		for _, key := range ks {
			raw, err := a.Read(ctx, key)
			if err != nil {
				if errors.Is(err, store.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			data[key] = raw
		}
		return data, nil
	})
}

// PrefetchRoute warms a registered route. Fire-and-forget; see
// [prefetch.Prefetcher].
func (a *App) PrefetchRoute(route string, opts prefetch.Options) {
	a.prefetch.PrefetchRoute(route, opts)
}

// PrefetchData resolves key through Read ahead of need. The resolved JSON
// stays retrievable with PrefetchedData.
func (a *App) PrefetchData(key string, opts prefetch.Options) {
	a.prefetch.PrefetchData(key, func(ctx context.Context) (any, error) {
		return a.Read(ctx, key)
	}, opts)
}

// PrefetchedData returns the JSON resolved for key by PrefetchData, if any.
func (a *App) PrefetchedData(key string) (json.RawMessage, bool) {
	v, ok := a.prefetch.PrefetchedData(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.(json.RawMessage)
	return raw, ok
}

// PredictivePrefetch idle-prefetches the likely-next routes of current per
// the configured route table.
func (a *App) PredictivePrefetch(currentRoute string) {
	a.prefetch.PredictivePrefetch(currentRoute)
}

// PrefetchedRoutes lists the routes already warmed, sorted.
func (a *App) PrefetchedRoutes() []string {
	return a.prefetch.Routes()
}

// SetupViewportPrefetch wires a one-shot visibility observer that prefetches
// route when the embedding UI reports the element near the viewport.
func (a *App) SetupViewportPrefetch(elementID, route string) *prefetch.ViewportObserver {
	return a.prefetch.SetupViewportPrefetch(elementID, route)
}

// SetupHoverPrefetch wires a debounced hover observer that prefetches route
// when the pointer rests on the element.
func (a *App) SetupHoverPrefetch(elementID, route string) *prefetch.HoverObserver {
	return a.prefetch.SetupHoverPrefetch(elementID, route)
}
