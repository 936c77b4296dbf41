// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/tomtom215/dealrank/internal/auth"
	"github.com/tomtom215/dealrank/internal/cache"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resources and actions named in the policy.
const (
	ResourceRecommendations     = "recommendations"
	ResourceRecommendationsFull = "recommendations_full"
	ResourceProfile             = "profile"
	ResourceCompare             = "compare"
	ResourceFeed                = "feed"
	ResourceCompute             = "compute"

	ActionRead  = "read"
	ActionWrite = "write"

	ScopeSelf  = "self"
	ScopeOther = "other"
)

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath overrides the embedded model when the file exists.
	ModelPath string

	// PolicyPath overrides the embedded policy when the file exists.
	PolicyPath string

	// CacheTTL bounds how long a decision is reused. 0 disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// Enforcer wraps the Casbin enforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *cache.LRU[bool]
}

// NewEnforcer loads the model and policy and returns a ready enforcer.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(stripComments(embeddedPolicy)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	if cfg.CacheTTL > 0 {
		e.cache = cache.NewLRU[bool](256, cfg.CacheTTL)
	}
	return e, nil
}

// stripComments drops comment and blank lines, which the string adapter
// does not skip.
func stripComments(policy string) string {
	var b strings.Builder
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Enforce checks whether role may perform action on resource within scope.
func (e *Enforcer) Enforce(role, resource, action, scope string) (bool, error) {
	key := role + "|" + resource + "|" + action + "|" + scope
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, resource, action, scope)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.Add(key, allowed)
	}
	return allowed, nil
}

// Authorize decides whether p may act on targetUserID's resource. An empty
// target means the caller's own data.
func (e *Enforcer) Authorize(p *auth.Principal, resource, action, targetUserID string) (bool, error) {
	if p == nil || p.UserID == "" {
		return false, errors.New("no principal")
	}
	scope := ScopeSelf
	if targetUserID != "" && targetUserID != p.UserID {
		scope = ScopeOther
	}
	return e.Enforce(p.Role, resource, action, scope)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
