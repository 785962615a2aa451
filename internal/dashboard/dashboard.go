// Package dashboard assembles the billing page from its panels. A page is
// a pure function of the warehouse contents and the request's Selection.
package dashboard

import (
	"context"

	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/common/metrics"
	anomalylister "billing-intelligence/internal/panels/anomaly-lister"
	billingseries "billing-intelligence/internal/panels/billing-series"
	copilotbridge "billing-intelligence/internal/panels/copilot-bridge"
	segmentselector "billing-intelligence/internal/panels/segment-selector"
)

const (
	PageTitle = "Billing Intelligence"
	Title     = "TelecomCorp Billing Intelligence Dashboard"
	Caption   = "Live metrics sourced from Snowflake dynamic tables, Cortex ML, and Cortex Search"
)

// Selection is everything a request can change on the page.
type Selection struct {
	Segment   string
	Question  string
	Submitted bool
}

type Page struct {
	PageTitle string
	Title     string
	Caption   string
	Segments  *segmentselector.Output
	Billing   *billingseries.Output
	Anomalies *anomalylister.Output
	Copilot   *copilotbridge.Output
	Question  string
}

type Service struct {
	segments  *segmentselector.Handler
	billing   *billingseries.Handler
	anomalies *anomalylister.Handler
	copilot   *copilotbridge.Handler
	logger    logger.Logger
}

func NewService(
	segments *segmentselector.Handler,
	billing *billingseries.Handler,
	anomalies *anomalylister.Handler,
	copilot *copilotbridge.Handler,
	log logger.Logger,
) *Service {
	return &Service{
		segments:  segments,
		billing:   billing,
		anomalies: anomalies,
		copilot:   copilot,
		logger:    log,
	}
}

// Render runs the panels top to bottom. The first failing panel aborts
// the page.
func (s *Service) Render(ctx context.Context, sel Selection) (*Page, error) {
	page, err := s.render(ctx, sel)
	if err != nil {
		metrics.PageRenders.WithLabelValues(metrics.StatusError).Inc()
		return nil, err
	}
	metrics.PageRenders.WithLabelValues(metrics.StatusSuccess).Inc()
	return page, nil
}

func (s *Service) render(ctx context.Context, sel Selection) (*Page, error) {
	segments, err := s.Segments(ctx, sel.Segment)
	if err != nil {
		return nil, err
	}

	billing, err := s.Billing(ctx, segments)
	if err != nil {
		return nil, err
	}

	anomalies, err := s.Anomalies(ctx)
	if err != nil {
		return nil, err
	}

	copilot, err := s.copilot.Execute(ctx, &copilotbridge.Input{
		Question:  sel.Question,
		Segment:   segments.Selected,
		Submitted: sel.Submitted,
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Debug("page rendered", map[string]interface{}{
		"segment":      segments.Selected,
		"billingRows":  len(billing.Records),
		"anomalyRows":  len(anomalies.Records),
		"copilotState": string(copilot.State),
	})

	return &Page{
		PageTitle: PageTitle,
		Title:     Title,
		Caption:   Caption,
		Segments:  segments,
		Billing:   billing,
		Anomalies: anomalies,
		Copilot:   copilot,
		Question:  sel.Question,
	}, nil
}

// Segments resolves the requested segment against the current list.
func (s *Service) Segments(ctx context.Context, requested string) (*segmentselector.Output, error) {
	return s.segments.Execute(ctx, &segmentselector.Input{Requested: requested})
}

// Billing loads the series for an already resolved selection.
func (s *Service) Billing(ctx context.Context, segments *segmentselector.Output) (*billingseries.Output, error) {
	return s.billing.Execute(ctx, &billingseries.Input{
		Segment: segments.Selected,
		Allowed: segments.Options,
	})
}

func (s *Service) Anomalies(ctx context.Context) (*anomalylister.Output, error) {
	return s.anomalies.Execute(ctx, &anomalylister.Input{})
}

// Ask submits a question with the given (already resolved) segment.
func (s *Service) Ask(ctx context.Context, question, segment string) (*copilotbridge.Output, error) {
	return s.copilot.Execute(ctx, &copilotbridge.Input{
		Question:  question,
		Segment:   segment,
		Submitted: true,
	})
}
