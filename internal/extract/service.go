package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// State is a step in the life of one extraction request.
type State string

const (
	StateReceived   State = "received"
	StateValidated  State = "validated"
	StateRasterized State = "rasterized"
	StateExtracted  State = "extracted"
	StateParsed     State = "parsed"
	StateResponded  State = "responded"
	StateErrored    State = "errored"
)

// Event reports a state transition. Err is set only for StateErrored.
type Event struct {
	RequestID string
	Filename  string
	State     State
	Stage     domain.Stage
	Elapsed   time.Duration
	Err       *domain.Error
	Timestamp time.Time
}

// Dependencies are the stage implementations. Inspector is optional.
type Dependencies struct {
	Validator  domain.DocumentValidator
	Inspector  domain.PageCounter
	Rasterizer domain.PageRasterizer
	Extractor  domain.Extractor
	Parser     domain.ResponseParser
}

// Service runs a single document through validation, rasterization,
// extraction and parsing, in that order, with no retries. It keeps no state
// between calls.
type Service struct {
	deps   Dependencies
	logger *observability.Logger
}

// NewService creates a new extraction service
func NewService(deps Dependencies, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Service{
		deps:   deps,
		logger: logger.WithOperation("extract"),
	}
}

// Process handles the complete extraction workflow for doc.
func (s *Service) Process(ctx context.Context, doc domain.UploadedDocument) (*domain.ExtractedRecord, error) {
	return s.ProcessWithEvents(ctx, doc, nil)
}

// ProcessWithEvents is Process, additionally reporting each transition on
// eventCh. Sends never block; events are dropped when the channel is full.
// Every returned error is a *domain.Error naming the stage and filename.
func (s *Service) ProcessWithEvents(ctx context.Context, doc domain.UploadedDocument, eventCh chan<- Event) (record *domain.ExtractedRecord, err error) {
	r := s.newRun(ctx, doc, eventCh)

	defer func() {
		if p := recover(); p != nil {
			record = nil
			err = r.fail(domain.InternalError("unexpected failure", fmt.Errorf("panic: %v", p)))
		}
	}()

	r.transition(StateReceived)

	r.stage = domain.StageValidate
	if err := s.deps.Validator.Check(doc.Filename, doc.Content); err != nil {
		return nil, r.fail(err)
	}
	r.transition(StateValidated)

	s.inspect(r, doc.Content)

	r.stage = domain.StageRasterize
	page, err := s.deps.Rasterizer.RasterizeFirstPage(ctx, doc.Content)
	if err != nil {
		return nil, r.fail(err)
	}
	r.log.Debug().
		Int("width", page.Width).
		Int("height", page.Height).
		Int("png_bytes", len(page.PNG)).
		Msg("first page rendered")
	r.transition(StateRasterized)

	r.stage = domain.StageExtract
	raw, err := s.deps.Extractor.Extract(ctx, page.PNG)
	if err != nil {
		return nil, r.fail(err)
	}
	r.log.Debug().Int("response_bytes", len(raw)).Msg("model answered")
	r.transition(StateExtracted)

	r.stage = domain.StageParse
	record, err = s.deps.Parser.Parse(raw)
	if err != nil {
		return nil, r.fail(err)
	}
	r.transition(StateParsed)

	return record, nil
}

// inspect logs page count diagnostics. Failures here never fail the request.
func (s *Service) inspect(r *run, content []byte) {
	if s.deps.Inspector == nil {
		return
	}
	n, err := s.deps.Inspector.PageCount(content)
	if err != nil {
		r.log.Debug().Err(err).Msg("page count unavailable")
		return
	}
	if n > 1 {
		r.log.Warn().Int("pages", n).Msg("document has several pages, only the first is processed")
	}
}

// run carries per-request bookkeeping.
type run struct {
	svc      *Service
	id       string
	filename string
	stage    domain.Stage
	started  time.Time
	eventCh  chan<- Event
	log      *observability.Logger
}

func (s *Service) newRun(ctx context.Context, doc domain.UploadedDocument, eventCh chan<- Event) *run {
	id := observability.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	return &run{
		svc:      s,
		id:       id,
		filename: doc.Filename,
		stage:    domain.StageUpload,
		started:  time.Now(),
		eventCh:  eventCh,
		log: s.logger.With().
			Str("request_id", id).
			Str("filename", doc.Filename).
			Logger(),
	}
}

func (r *run) transition(state State) {
	elapsed := time.Since(r.started)
	r.log.Info().
		Str("state", string(state)).
		Str("stage", string(r.stage)).
		Dur("elapsed", elapsed).
		Msg("state transition")
	r.svc.emitEvent(r.eventCh, Event{
		RequestID: r.id,
		Filename:  r.filename,
		State:     state,
		Stage:     r.stage,
		Elapsed:   elapsed,
		Timestamp: time.Now(),
	})
}

// fail moves the run to StateErrored and returns the classified error.
func (r *run) fail(err error) *domain.Error {
	de := domain.Classify(err, r.stage, r.filename)
	elapsed := time.Since(r.started)

	evt := r.log.Warn()
	if de.Kind == domain.KindInternalFault {
		evt = r.log.Error()
	}
	evt.Str("state", string(StateErrored)).
		Str("stage", string(r.stage)).
		Str("kind", string(de.Kind)).
		Dur("elapsed", elapsed).
		Err(err).
		Msg("state transition")

	r.svc.emitEvent(r.eventCh, Event{
		RequestID: r.id,
		Filename:  r.filename,
		State:     StateErrored,
		Stage:     r.stage,
		Elapsed:   elapsed,
		Err:       de,
		Timestamp: time.Now(),
	})
	return de
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- Event, event Event) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("state", string(event.State)).Msg("event channel full, dropping event")
		}
	}
}
