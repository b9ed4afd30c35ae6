/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -self_package mocks -package policy_test -source=evaluator.go -mock_names metricsProvider=MockMetricsProvider

package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

var logger = log.New("policy-evaluator")

type metricsProvider interface {
	PolicyEvaluationTime(value time.Duration)
}

// QueryPresentations are the validated presentations accepted for one credential query id.
type QueryPresentations struct {
	QueryID       string
	Presentations []*validator.Presentation
}

// Outcome is the result of one policy run.
type Outcome struct {
	Policy            string      `json:"policy"`
	Scope             Scope       `json:"scope"`
	QueryID           string      `json:"query_id"`
	PresentationIndex int         `json:"presentation_index"`
	CredentialIndex   *int        `json:"credential_index,omitempty"`
	Success           bool        `json:"success"`
	Result            interface{} `json:"result,omitempty"`
	Error             string      `json:"error,omitempty"`
}

// Result groups outcomes by tier.
type Result struct {
	VP             []*Outcome `json:"vp_policies"`
	SpecificVP     []*Outcome `json:"specific_vp_policies"`
	VC             []*Outcome `json:"vc_policies"`
	SpecificVC     []*Outcome `json:"specific_vc_policies"`
	OverallSuccess bool       `json:"overall_success"`
}

// Failed returns the failed outcomes of all tiers.
func (r *Result) Failed() []*Outcome {
	var failed []*Outcome

	for _, tier := range [][]*Outcome{r.VP, r.SpecificVP, r.VC, r.SpecificVC} {
		for _, o := range tier {
			if !o.Success {
				failed = append(failed, o)
			}
		}
	}

	return failed
}

// Config configures the evaluator.
type Config struct {
	Registry *Registry
	Metrics  metricsProvider
}

// Evaluator runs policy sets. Any error, panic or unknown policy fails the run.
type Evaluator struct {
	registry *Registry
	metrics  metricsProvider
}

// NewEvaluator returns a new Evaluator. Without a registry every policy is unknown.
func NewEvaluator(config *Config) *Evaluator {
	e := &Evaluator{
		registry: config.Registry,
		metrics:  config.Metrics,
	}

	if e.registry == nil {
		e.registry = NewRegistry()
	}

	return e
}

// Evaluate runs every tier of set over the presentations, in query order.
func (e *Evaluator) Evaluate(ctx context.Context, set *Set, presented []QueryPresentations) *Result {
	start := time.Now()

	defer func() {
		if e.metrics != nil {
			e.metrics.PolicyEvaluationTime(time.Since(start))
		}
	}()

	result := &Result{}

	if set == nil {
		set = &Set{}
	}

	for _, qp := range presented {
		specificVP := set.SpecificVPPolicies[qp.QueryID]
		specificVC := set.SpecificVCPolicies[qp.QueryID]

		for pi, p := range qp.Presentations {
			vpIn := &Input{Scope: ScopeVP, QueryID: qp.QueryID, Presentation: p}

			result.VP = append(result.VP, e.runAll(ctx, set.VPPolicies, vpIn, pi)...)
			result.SpecificVP = append(result.SpecificVP, e.runAll(ctx, specificVP, vpIn, pi)...)

			for ci := range p.Credentials {
				vcIn := &Input{
					Scope:           ScopeVC,
					QueryID:         qp.QueryID,
					Presentation:    p,
					Credential:      &p.Credentials[ci],
					CredentialIndex: ci,
				}

				result.VC = append(result.VC, e.runAll(ctx, set.VCPolicies, vcIn, pi)...)
				result.SpecificVC = append(result.SpecificVC, e.runAll(ctx, specificVC, vcIn, pi)...)
			}
		}
	}

	result.OverallSuccess = len(result.Failed()) == 0

	logger.Debugc(ctx, "policies evaluated", log.WithDuration(time.Since(start)),
		logfields.WithAdditionalMessage(fmt.Sprintf("overall success: %t", result.OverallSuccess)))

	return result
}

func (e *Evaluator) runAll(ctx context.Context, specs []Spec, in *Input, presentationIndex int) []*Outcome {
	outcomes := make([]*Outcome, 0, len(specs))

	for _, spec := range specs {
		outcomes = append(outcomes, e.run(ctx, spec, in, presentationIndex))
	}

	return outcomes
}

func (e *Evaluator) run(ctx context.Context, spec Spec, in *Input, presentationIndex int) (outcome *Outcome) {
	outcome = &Outcome{
		Policy:            spec.Name,
		Scope:             in.Scope,
		QueryID:           in.QueryID,
		PresentationIndex: presentationIndex,
	}

	if in.Scope == ScopeVC {
		idx := in.CredentialIndex
		outcome.CredentialIndex = &idx
	}

	p, err := e.registry.Resolve(spec.Name)
	if err != nil {
		return outcome.fail(err)
	}

	if !supports(p, in.Scope) {
		return outcome.fail(fmt.Errorf("policy %s does not support scope %s", spec.Name, in.Scope))
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorc(ctx, "policy panicked", logfields.WithPolicyName(spec.Name),
				logfields.WithQueryID(in.QueryID), log.WithError(fmt.Errorf("%v", r)))

			outcome.Success = false
			outcome.Result = nil
			outcome.Error = fmt.Sprintf("policy panicked: %v", r)
		}
	}()

	res, err := p.Run(ctx, spec.Args, in)

	outcome.Result = res

	if err != nil {
		logger.Debugc(ctx, "policy failed", logfields.WithPolicyName(spec.Name),
			logfields.WithPolicyScope(string(in.Scope)), logfields.WithQueryID(in.QueryID), log.WithError(err))

		return outcome.fail(err)
	}

	outcome.Success = true

	return outcome
}

func (o *Outcome) fail(err error) *Outcome {
	o.Success = false
	o.Error = err.Error()

	return o
}
