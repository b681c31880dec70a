// The scanner command runs the check-in kiosk loop against a running
// API instance. It reads decoded QR payloads line by line from stdin
// (the interface a keyboard-wedge scanner presents) and forwards each
// code through the scan gate, honoring the server-side cooldown.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	"github.com/noah-isme/presensi-qr-api/internal/scanner"
	"github.com/noah-isme/presensi-qr-api/pkg/config"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
	"github.com/noah-isme/presensi-qr-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Checkin.APIToken == "" {
		logr.Sugar().Fatalw("CHECKIN_API_TOKEN is required, obtain one via POST /auth/login")
	}

	gate := newAPIGate(cfg.Checkin, logr)
	source := newLineSource(os.Stdin)
	session := scanner.NewSession(source, textDecoder{}, gate, scanner.Config{
		FrameInterval: cfg.Checkin.FrameInterval,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session.Start(ctx)
	logr.Sugar().Infow("kiosk started", "api", cfg.Checkin.APIBaseURL, "interval", cfg.Checkin.FrameInterval)

	go func() {
		for result := range session.Results() {
			fields := []interface{}{"status", result.Status, "message", result.Message}
			if result.Student != nil {
				fields = append(fields, "student", result.Student.Name)
			}
			logr.Sugar().Infow("scan decision", fields...)
		}
	}()

	<-ctx.Done()
	session.Stop()
	logr.Sugar().Infow("kiosk stopped")
}

// lineSource adapts newline-delimited stdin input to the frame source
// contract. A reader goroutine feeds lines into a channel so Grab can
// honor context cancellation; Close releases the goroutine even when
// nobody is consuming.
type lineSource struct {
	lines chan []byte
	quit  chan struct{}
	once  sync.Once
}

func newLineSource(r io.Reader) *lineSource {
	s := &lineSource{
		lines: make(chan []byte),
		quit:  make(chan struct{}),
	}
	go func() {
		defer close(s.lines)
		reader := bufio.NewScanner(r)
		for reader.Scan() {
			line := make([]byte, len(reader.Bytes()))
			copy(line, reader.Bytes())
			select {
			case s.lines <- line:
			case <-s.quit:
				return
			}
		}
	}()
	return s
}

func (s *lineSource) Grab(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return nil, io.EOF
		}
		return line, nil
	}
}

func (s *lineSource) Close() error {
	s.once.Do(func() { close(s.quit) })
	return nil
}

// textDecoder treats the frame bytes as the already-decoded payload.
type textDecoder struct{}

func (textDecoder) Decode(frame []byte) (string, error) {
	code := string(bytes.TrimSpace(frame))
	if code == "" {
		return "", scanner.ErrNoCode
	}
	return code, nil
}

// apiGate drives the remote scan gate over HTTP.
type apiGate struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func newAPIGate(cfg config.CheckinConfig, logger *zap.Logger) *apiGate {
	return &apiGate{
		baseURL: cfg.APIBaseURL,
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type scanEnvelope struct {
	Data  *dto.CheckinResult `json:"data"`
	Error *appErrors.Error   `json:"error"`
}

type statusEnvelope struct {
	Data struct {
		CoolingDown bool `json:"coolingDown"`
	} `json:"data"`
}

func (g *apiGate) Scan(ctx context.Context, code string) (*dto.CheckinResult, error) {
	payload, err := json.Marshal(dto.ScanRequest{Code: code})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkin/scan", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var env scanEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode scan response: %w", err)
	}
	if env.Error != nil {
		return nil, env.Error
	}
	if env.Data == nil {
		return nil, fmt.Errorf("scan response carried no decision (http %d)", resp.StatusCode)
	}
	return env.Data, nil
}

func (g *apiGate) CoolingDown() bool {
	req, err := http.NewRequest(http.MethodGet, g.baseURL+"/checkin/status", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("gate status unavailable", zap.Error(err))
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	var env statusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false
	}
	return env.Data.CoolingDown
}
