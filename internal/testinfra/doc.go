// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

//go:build integration

// Package testinfra provides test infrastructure for integration testing with containers.
//
// Containers are managed with testcontainers-go and only compiled under the
// integration build tag:
//
//	go test -tags=integration ./internal/cache/...
//
// # Redis Container
//
//	func TestRedisProfileCache(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc.Container)
//	    client := redis.NewClient(&redis.Options{Addr: rc.Addr})
//	    // ...
//	}
package testinfra
