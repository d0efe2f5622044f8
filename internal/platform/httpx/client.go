// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package httpx builds the HTTP clients used by operational probes.
package httpx

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultProbeTimeout          = 5 * time.Second
	defaultDialTimeout           = 2 * time.Second
	defaultResponseHeaderTimeout = 3 * time.Second
)

// NewProbeClient returns a client for one-shot local health probes. It never
// uses a proxy from the environment and does not keep connections alive.
func NewProbeClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 nil,
			DialContext:           (&net.Dialer{Timeout: min(timeout, defaultDialTimeout)}).DialContext,
			DisableKeepAlives:     true,
			ResponseHeaderTimeout: min(timeout, defaultResponseHeaderTimeout),
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
