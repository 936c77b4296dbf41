// Dealrank - Personalized Coupon Ranking for Marketplaces
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dealrank

/*
Package supervisor provides process supervision for Dealrank using suture v4.

The tree has two layers so a failing background job cannot stop the API:

	dealrank
	├── ranking-layer
	│   └── SweepService (if SWEEP_ENABLED)
	└── api-layer
	    └── HTTPServerService

Crashed services restart with suture's backoff. Failure counts decay over
FailureDecay seconds and a layer that exceeds FailureThreshold waits
FailureBackoff before the next attempt. Supervisor events are logged through
sutureslog into the zerolog-backed slog handler from the logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	tree.AddRankingService(sweep)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
