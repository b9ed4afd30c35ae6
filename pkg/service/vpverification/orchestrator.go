/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vpverification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trustbloc/vp-verifier/internal/logfields"
	"github.com/trustbloc/vp-verifier/pkg/dcql"
	"github.com/trustbloc/vp-verifier/pkg/doc/vptoken"
	"github.com/trustbloc/vp-verifier/pkg/session"
	"github.com/trustbloc/vp-verifier/pkg/verifier/validator"
)

const defaultWorkers = 8

// Orchestrator verifies every presentation of a vp_token on a bounded worker pool and joins the
// outcomes into an AggregatedResult.
type Orchestrator struct {
	verifier presentationVerifier
	workers  int
	metrics  metricsProvider
}

// NewOrchestrator returns an orchestrator running at most workers verifications at a time.
func NewOrchestrator(verifier presentationVerifier, workers int, metrics metricsProvider) *Orchestrator {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Orchestrator{verifier: verifier, workers: workers, metrics: metrics}
}

type task struct {
	queryID      string
	index        int
	presentation string
	cq           *dcql.CredentialQuery
}

type outcome struct {
	presentation *validator.Presentation
	err          *validator.Error
	missingNonce bool
}

// VerifyAll verifies the bundle against the session's query. It never returns an error: every
// rejection is recorded per presentation. Ids not in the query and empty presentation lists are
// skipped; for credential queries without "multiple" only the first presentation is verified.
func (o *Orchestrator) VerifyAll(ctx context.Context, bundle *vptoken.Bundle, s *session.Session) *AggregatedResult {
	tasks := o.plan(ctx, bundle, s)

	logger.Debugc(ctx, "Verifying presentations", logfields.WithSessionID(s.ID),
		logfields.WithPresentationCount(len(tasks)), logfields.WithWorkers(o.workers))

	// Each task writes only its own slot; the slots are read after Wait.
	outcomes := make([]outcome, len(tasks))

	g := &errgroup.Group{}
	g.SetLimit(o.workers)

	for i := range tasks {
		i := i

		g.Go(func() error {
			outcomes[i] = o.run(ctx, &tasks[i], s)

			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck

	result := newAggregatedResult()

	for i := range tasks {
		t, out := &tasks[i], &outcomes[i]

		if out.missingNonce {
			panic(ErrMissingNonce)
		}

		if out.err != nil {
			result.addError(&PresentationError{QueryID: t.queryID, Index: t.index, Err: out.err})

			continue
		}

		result.addValidated(&ValidatedPresentation{QueryID: t.queryID, Index: t.index, Presentation: out.presentation})
	}

	return result
}

func (o *Orchestrator) plan(ctx context.Context, bundle *vptoken.Bundle, s *session.Session) []task {
	var tasks []task

	for _, e := range bundle.Entries() {
		cq, ok := s.Query.CredentialQuery(e.QueryID)
		if !ok {
			logger.Warnc(ctx, "Ignoring presentations for unknown credential query id",
				logfields.WithSessionID(s.ID), logfields.WithQueryID(e.QueryID))

			continue
		}

		presentations := e.Presentations

		if len(presentations) == 0 {
			logger.Warnc(ctx, "Ignoring empty presentation list",
				logfields.WithSessionID(s.ID), logfields.WithQueryID(e.QueryID))

			continue
		}

		if !cq.Multiple && len(presentations) > 1 {
			logger.Warnc(ctx, "Credential query does not allow multiple presentations, verifying the first only",
				logfields.WithSessionID(s.ID), logfields.WithQueryID(e.QueryID),
				logfields.WithPresentationCount(len(presentations)))

			presentations = presentations[:1]
		}

		for i, p := range presentations {
			tasks = append(tasks, task{queryID: e.QueryID, index: i, presentation: p, cq: cq})
		}
	}

	return tasks
}

func (o *Orchestrator) run(ctx context.Context, t *task, s *session.Session) (out outcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && errors.Is(err, ErrMissingNonce) {
				out = outcome{missingNonce: true}

				return
			}

			logger.Errorc(ctx, "Presentation verification panicked", logfields.WithSessionID(s.ID),
				logfields.WithQueryID(t.queryID), logfields.WithPresentationIndex(t.index),
				logfields.WithAdditionalMessage(fmt.Sprint(r)))

			out = outcome{err: validator.Errorf(validator.KindInternal, "verification panicked: %v", r)}
		}

		if o.metrics != nil {
			o.metrics.PresentationVerificationTime(time.Since(start))

			if out.err != nil {
				o.metrics.PresentationRejected(string(out.err.Kind))
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return outcome{err: validator.NewError(validator.KindInternal, err)}
	}

	p, err := o.verifier.Verify(ctx, t.presentation, t.cq, s)
	if err != nil {
		return outcome{err: validator.AsError(err, validator.KindInternal)}
	}

	return outcome{presentation: p}
}
