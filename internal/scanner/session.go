// Package scanner runs the continuous QR capture loop that feeds the
// check-in gate. A Session polls a frame source on a fixed interval,
// decodes at most one code per frame and hands it to the gate; frames
// that arrive while the gate is cooling down are dropped undecoded.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

// ErrNoCode is returned by a Decoder when the frame holds no readable code.
var ErrNoCode = errors.New("no code in frame")

// FrameSource yields raw camera frames. Grab blocks until a frame is
// available or the context is done; ErrNoCode signals an idle source
// with no frame to offer.
type FrameSource interface {
	Grab(ctx context.Context) ([]byte, error)
	Close() error
}

// Decoder extracts a QR payload from a frame.
type Decoder interface {
	Decode(frame []byte) (string, error)
}

type checkinGate interface {
	Scan(ctx context.Context, code string) (*dto.CheckinResult, error)
	CoolingDown() bool
}

// Config tunes the capture loop.
type Config struct {
	FrameInterval time.Duration
}

// Session owns one camera acquisition. Start spins the loop in a
// goroutine; Stop cancels it and waits, then releases the source, so
// the camera handle is always returned exactly once.
type Session struct {
	source   FrameSource
	decoder  Decoder
	gate     checkinGate
	results  chan dto.CheckinResult
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

// NewSession constructs a stopped session.
func NewSession(source FrameSource, decoder Decoder, gate checkinGate, cfg Config, logger *zap.Logger) *Session {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		source:   source,
		decoder:  decoder,
		gate:     gate,
		results:  make(chan dto.CheckinResult, 16),
		interval: cfg.FrameInterval,
		logger:   logger,
	}
}

// Results delivers gate decisions in scan order. The channel is closed
// when the loop exits.
func (s *Session) Results() <-chan dto.CheckinResult {
	return s.results
}

// Start begins the capture loop. A session runs at most once: repeated
// calls, and calls after Stop, are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true
	go s.loop(loopCtx)
}

// Stop cancels the loop, waits for it to exit and releases the frame
// source. Idempotent; the session cannot be restarted afterwards.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.stopped = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	if err := s.source.Close(); err != nil {
		s.logger.Warn("failed to release frame source", zap.Error(err))
	}
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.results)
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	sourceDown := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Cooldown frames are dropped before decoding; the gate stays
		// closed until an explicit reset.
		if s.gate.CoolingDown() {
			continue
		}

		frame, err := s.source.Grab(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, ErrNoCode) {
				continue
			}
			// One warning per failure streak; the ledger is untouched
			// and the loop keeps polling for recovery.
			if !sourceDown {
				sourceDown = true
				s.logger.Warn("frame source unavailable",
					zap.Error(appErrors.Wrap(err, appErrors.ErrAcquisitionFailure.Code, appErrors.ErrAcquisitionFailure.Status, appErrors.ErrAcquisitionFailure.Message)))
			}
			continue
		}
		sourceDown = false

		code, err := s.decoder.Decode(frame)
		if err != nil {
			if !errors.Is(err, ErrNoCode) {
				s.logger.Debug("frame decode failed", zap.Error(err))
			}
			continue
		}

		result, err := s.gate.Scan(ctx, code)
		if err != nil {
			s.logger.Warn("scan rejected by gate", zap.Error(err))
			continue
		}

		select {
		case s.results <- *result:
		case <-ctx.Done():
			return
		default:
			s.logger.Warn("result channel full, dropping decision", zap.String("status", string(result.Status)))
		}
	}
}
