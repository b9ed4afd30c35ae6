/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

// Component names the part of the verifier an error originates from.
type Component string

const (
	SessionSvcComponent         Component = "verifier.session-service"
	VerificationEngineComponent Component = "verifier.verification-engine"
	PolicyRegistryComponent     Component = "verifier.policy-registry"
	SessionStoreComponent       Component = "session-store"
	EventBusComponent           Component = "event-bus"
	RedisComponent              Component = "redis-service"
	LogAPIComponent             Component = "log-api"
)
