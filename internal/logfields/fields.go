/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logfields

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log Fields.
const (
	FieldAdditionalMessage  = "additionalMessage"
	FieldAudience           = "audience"
	FieldComponent          = "component"
	FieldCredentialIndex    = "credentialIndex"
	FieldEvent              = "event"
	FieldFormat             = "format"
	FieldJSONSchemaID       = "jsonSchemaID"
	FieldPolicyName         = "policy"
	FieldPolicyScope        = "policyScope"
	FieldPresentationCount  = "presentationCount"
	FieldPresentationIndex  = "presentationIndex"
	FieldQueryID            = "queryID"
	FieldQueryIDs           = "queryIDs"
	FieldRoute              = "route"
	FieldSessionEvent       = "sessionEvent"
	FieldSessionID          = "sessionID"
	FieldSessionStatus      = "sessionStatus"
	FieldSleep              = "sleep"
	FieldState              = "state"
	FieldTopic              = "topic"
	FieldUserLogLevel       = "userLogLevel"
	FieldWorkers            = "workers"
	FieldResponseMode       = "responseMode"
	FieldUnmetCredentialSet = "unmetCredentialSet"
)

// WithAdditionalMessage sets the AdditionalMessage field.
func WithAdditionalMessage(value string) zap.Field {
	return zap.Any(FieldAdditionalMessage, value)
}

// WithAudience sets the expected audience field.
func WithAudience(audience string) zap.Field {
	return zap.String(FieldAudience, audience)
}

// WithComponent sets the component field.
func WithComponent(name string) zap.Field {
	return zap.String(FieldComponent, name)
}

// WithCredentialIndex sets the index of a credential inside a presentation.
func WithCredentialIndex(idx int) zap.Field {
	return zap.Int(FieldCredentialIndex, idx)
}

// WithEvent sets the Event field.
func WithEvent(event interface{}) zap.Field {
	return zap.Inline(NewObjectMarshaller(FieldEvent, event))
}

// WithFormat sets the credential format field.
func WithFormat(format string) zap.Field {
	return zap.String(FieldFormat, format)
}

// WithJSONSchemaID sets the JSON schema ID field.
func WithJSONSchemaID(id string) zap.Field {
	return zap.String(FieldJSONSchemaID, id)
}

// WithPolicyName sets the verification policy name field.
func WithPolicyName(name string) zap.Field {
	return zap.String(FieldPolicyName, name)
}

// WithPolicyScope sets the verification policy scope field.
func WithPolicyScope(scope string) zap.Field {
	return zap.String(FieldPolicyScope, scope)
}

// WithPresentationCount sets the number of presentations field.
func WithPresentationCount(count int) zap.Field {
	return zap.Int(FieldPresentationCount, count)
}

// WithPresentationIndex sets the submission index of a presentation.
func WithPresentationIndex(idx int) zap.Field {
	return zap.Int(FieldPresentationIndex, idx)
}

// WithQueryID sets the DCQL credential query ID field.
func WithQueryID(id string) zap.Field {
	return zap.String(FieldQueryID, id)
}

// WithQueryIDs sets the list of DCQL credential query IDs field.
func WithQueryIDs(ids []string) zap.Field {
	return zap.Strings(FieldQueryIDs, ids)
}

// WithRoute sets the matched HTTP route field.
func WithRoute(route string) zap.Field {
	return zap.String(FieldRoute, route)
}

// WithSessionEvent sets the session event field.
func WithSessionEvent(event string) zap.Field {
	return zap.String(FieldSessionEvent, event)
}

// WithSessionID sets the verification session ID field.
func WithSessionID(id string) zap.Field {
	return zap.String(FieldSessionID, id)
}

// WithSessionStatus sets the verification session status field.
func WithSessionStatus(status string) zap.Field {
	return zap.String(FieldSessionStatus, status)
}

// WithSleep sets the sleep field.
func WithSleep(sleep time.Duration) zap.Field {
	return zap.Duration(FieldSleep, sleep)
}

// WithState sets the lifecycle state field.
func WithState(state string) zap.Field {
	return zap.String(FieldState, state)
}

// WithTopic sets the event topic field.
func WithTopic(topic string) zap.Field {
	return zap.String(FieldTopic, topic)
}

// WithUserLogLevel sets the UserLogLevel field.
func WithUserLogLevel(logLevel string) zap.Field {
	return zap.String(FieldUserLogLevel, logLevel)
}

// WithWorkers sets the Workers field.
func WithWorkers(workers int) zap.Field {
	return zap.Int(FieldWorkers, workers)
}

// WithResponseMode sets the OpenID4VP response mode field.
func WithResponseMode(mode string) zap.Field {
	return zap.String(FieldResponseMode, mode)
}

// WithUnmetCredentialSet sets the unmet credential set field.
func WithUnmetCredentialSet(set interface{}) zap.Field {
	return zap.Inline(NewObjectMarshaller(FieldUnmetCredentialSet, set))
}

// ObjectMarshaller uses reflection to marshal an object's fields.
type ObjectMarshaller struct {
	key string
	obj interface{}
}

// NewObjectMarshaller returns a new ObjectMarshaller.
func NewObjectMarshaller(key string, obj interface{}) *ObjectMarshaller {
	return &ObjectMarshaller{key: key, obj: obj}
}

// MarshalLogObject marshals the object's fields.
func (m *ObjectMarshaller) MarshalLogObject(e zapcore.ObjectEncoder) error {
	return e.AddReflected(m.key, m.obj)
}
