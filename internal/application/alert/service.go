// Package alert 將交易訊號補齊、渲染並交給通知平台送出。
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alphaflow-alerts/internal/application/enrich"
	"alphaflow-alerts/internal/application/render"
	alertDomain "alphaflow-alerts/internal/domain/alert"
	"alphaflow-alerts/internal/domain/signal"
	"alphaflow-alerts/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// Dispatcher 將渲染後的警報送至指定頻道。
type Dispatcher interface {
	Platform() string
	Dispatch(ctx context.Context, channelID string, a alertDomain.Alert, rows []alertDomain.ActionRow) error
}

var ErrNoChannel = errors.New("no deliverable channel configured")

// Prepared 為單筆訊號補齊與渲染的結果。
type Prepared struct {
	Levels     signal.LevelSet
	RiskReward signal.RiskRewardPair
	Confidence int
	Alert      alertDomain.Alert
	Links      []alertDomain.Link
	Rows       []alertDomain.ActionRow
}

// Result 為成功送出的結果。
type Result struct {
	ChannelID string
	Prepared  Prepared
}

// Service 串接補齊、渲染、路由與送出。
type Service struct {
	levels     enrich.LevelConfig
	renderer   *render.Renderer
	router     Router
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService 建立警報服務。
func NewService(levels enrich.LevelConfig, renderer *render.Renderer, router Router, dispatcher Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		levels:     levels,
		renderer:   renderer,
		router:     router,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Platform 回傳目前通知平台名稱。
func (s *Service) Platform() string {
	if s.dispatcher == nil {
		return ""
	}
	return s.dispatcher.Platform()
}

// Prepare runs enrichment and rendering. It never fails: missing or invalid
// inputs degrade to placeholders.
func (s *Service) Prepare(env signal.Envelope) Prepared {
	p := env.Payload
	lv := enrich.ComputeLevels(p, s.levels)
	rr := enrich.EvaluateRiskReward(lv)
	conf := enrich.ScoreConfidence(p, rr)

	links := s.renderer.Links(p)
	return Prepared{
		Levels:     lv,
		RiskReward: rr,
		Confidence: conf,
		Alert: s.renderer.Render(render.Input{
			Payload:    p,
			Source:     env.Source,
			Levels:     lv,
			RiskReward: rr,
			Confidence: conf,
		}),
		Links: links,
		Rows:  render.BuildActionRows(links),
	}
}

// Send routes the signal by tier, renders it and dispatches it once. Dispatch
// errors are returned unchanged apart from wrapping; there is no retry.
func (s *Service) Send(ctx context.Context, env signal.Envelope) (Result, error) {
	tier := Tier(env.Tier)
	platform := s.Platform()
	metrics.ObserveReceived(tier)

	channelID := s.router.Pick(env.Tier)
	if channelID == "" || s.dispatcher == nil {
		metrics.ObserveDispatch(platform, metrics.OutcomeNoChannel, 0)
		return Result{}, ErrNoChannel
	}

	prepared := s.Prepare(env)
	metrics.ObserveConfidence(prepared.Confidence)

	start := s.now()
	err := s.dispatcher.Dispatch(ctx, channelID, prepared.Alert, prepared.Rows)
	took := s.now().Sub(start)

	fields := []zap.Field{
		zap.Stringer("symbol", env.Payload.Symbol),
		zap.String("side", string(env.Payload.NormalizedSide())),
		zap.String("tier", tier),
		zap.String("source", env.Source),
		zap.String("platform", platform),
		zap.String("channel_id", channelID),
		zap.Int("confidence", prepared.Confidence),
		zap.Duration("took", took),
	}
	if err != nil {
		metrics.ObserveDispatch(platform, metrics.OutcomeFailure, took)
		s.logger.Warn("alert dispatch failed", append(fields, zap.Error(err))...)
		return Result{}, fmt.Errorf("dispatch to %s: %w", channelID, err)
	}
	metrics.ObserveDispatch(platform, metrics.OutcomeSuccess, took)
	s.logger.Info("alert dispatched", fields...)
	return Result{ChannelID: channelID, Prepared: prepared}, nil
}
