// Omnisonic
// Copyright (c) 2026 The Omnisonic Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Omnisonic.
//
// Omnisonic is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Omnisonic is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Omnisonic.  If not, see <http://www.gnu.org/licenses/>.

package config

import "time"

const (
	DefaultListenAddr        = ":8100"
	DefaultRequestsPerMinute = 600
	DefaultRateBurst         = 50
)

type Service struct {
	RequestTimeoutSecs *int      `toml:"request_timeout_secs,omitempty"`
	RateLimit          RateLimit `toml:"rate_limit,omitempty"`
	ListenAddr         string    `toml:"listen_addr,omitempty"`
	AllowedOrigins     []string  `toml:"allowed_origins,omitempty"`
	AllowedIPs         []string  `toml:"allowed_ips,omitempty"`
}

type RateLimit struct {
	RequestsPerMinute int `toml:"requests_per_minute,omitempty"`
	Burst             int `toml:"burst,omitempty"`
}

func (c *Instance) ListenAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Service.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.vals.Service.ListenAddr
}

func (c *Instance) SetListenAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Service.ListenAddr = addr
}

func (c *Instance) RequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Service.RequestTimeoutSecs == nil || *c.vals.Service.RequestTimeoutSecs <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(*c.vals.Service.RequestTimeoutSecs) * time.Second
}

// RateLimit returns requests per minute and burst per client IP. A
// negative requests_per_minute disables limiting and returns 0.
func (c *Instance) RateLimit() (perMinute, burst int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perMinute = c.vals.Service.RateLimit.RequestsPerMinute
	burst = c.vals.Service.RateLimit.Burst
	switch {
	case perMinute < 0:
		return 0, 0
	case perMinute == 0:
		perMinute = DefaultRequestsPerMinute
	}
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	return perMinute, burst
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.AllowedOrigins
}

// AllowedIPs lists the IPs and CIDRs allowed to call the API. Empty allows
// everyone.
func (c *Instance) AllowedIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.AllowedIPs
}
