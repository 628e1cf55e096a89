// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"fmt"
	"time"
)

// Http holds the HTTP server configuration.
type Http struct {
	Host                string
	Port                int
	Mode                string
	InternalContextPath string
	ExposeMetrics       bool
	AccessLog           bool
	BodyLimit           int // bytes
	ReadTimeout         int // seconds
	WriteTimeout        int
	IdleTimeout         int
	ShutdownTimeout     int
	TLS                 TLS
	Auth                Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

// Auth configures bearer token validation.
type Auth struct {
	SecretKey      string
	AccessExpire   time.Duration
	RefreshExpire  time.Duration
	RedisKeyPrefix string
	// SkipTokenStore disables the redis presence check for issued tokens.
	SkipTokenStore bool
}

// SetDefaults fills zero values.
func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.InternalContextPath == "" {
		h.InternalContextPath = "/api/v1"
	}
	if h.BodyLimit <= 0 {
		h.BodyLimit = 4 * 1024 * 1024
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 60
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 60
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 120
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 30
	}
	if h.Auth.AccessExpire <= 0 {
		h.Auth.AccessExpire = 24 * time.Hour
	}
	if h.Auth.RefreshExpire <= 0 {
		h.Auth.RefreshExpire = 7 * 24 * time.Hour
	}
	if h.Auth.RedisKeyPrefix == "" {
		h.Auth.RedisKeyPrefix = "epcentra:token:"
	}
}

// Addr returns host:port.
func (h *Http) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// TokenKey is the redis key under which a user's access token is registered.
func (a Auth) TokenKey(userId string) string {
	return a.RedisKeyPrefix + userId
}
