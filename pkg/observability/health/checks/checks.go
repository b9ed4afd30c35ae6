/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package checks provides the health checks of the verifier's runtime dependencies.
package checks

import (
	"context"
	"fmt"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Running() error
}

// Ping checks a remote dependency such as the redis session store.
func Ping(name string, client pinger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping %s: %w", name, err)
		}

		return nil
	}
}

// Running checks an in-process component with a lifecycle, such as the event bus.
func Running(component runner) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		return component.Running()
	}
}
