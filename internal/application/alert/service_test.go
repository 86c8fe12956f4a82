package alert

import (
	"context"
	"errors"
	"testing"

	"alphaflow-alerts/internal/application/enrich"
	"alphaflow-alerts/internal/application/render"
	alertDomain "alphaflow-alerts/internal/domain/alert"
	"alphaflow-alerts/internal/domain/signal"
)

type sentAlert struct {
	channelID string
	alert     alertDomain.Alert
	rows      []alertDomain.ActionRow
}

type fakeDispatcher struct {
	sent []sentAlert
	err  error
}

func (f *fakeDispatcher) Platform() string { return "fake" }

func (f *fakeDispatcher) Dispatch(_ context.Context, channelID string, a alertDomain.Alert, rows []alertDomain.ActionRow) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentAlert{channelID: channelID, alert: a, rows: rows})
	return nil
}

func newTestService(router Router, d Dispatcher) *Service {
	return NewService(enrich.DefaultLevelConfig(), render.NewRenderer(render.DefaultConfig()), router, d, nil)
}

func btcEnvelope(tier string) signal.Envelope {
	return signal.Envelope{
		Tier:   tier,
		Source: "tv",
		Payload: signal.Payload{
			Symbol:     "BTCUSDT",
			Timeframe:  "4h",
			Side:       "BUY",
			Price:      signal.NumberOf(100),
			Technicals: signal.Technicals{ATR: signal.NumberOf(2)},
		},
	}
}

func TestService_Send(t *testing.T) {
	d := &fakeDispatcher{}
	svc := newTestService(Router{Free: "free-chan", Pro: "pro-chan"}, d)

	res, err := svc.Send(context.Background(), btcEnvelope("Premium"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChannelID != "pro-chan" {
		t.Errorf("expected pro-chan, got %s", res.ChannelID)
	}
	if len(d.sent) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(d.sent))
	}
	got := d.sent[0]
	if got.alert.Title != "BTCUSDT • BUY • 4h" {
		t.Errorf("unexpected title %q", got.alert.Title)
	}
	if len(got.rows) != 1 || len(got.rows[0].Buttons) != 2 {
		t.Fatalf("expected one row with two buttons, got %+v", got.rows)
	}
	if got.rows[0].Buttons[0].Label != "TradingView" || got.rows[0].Buttons[1].Label != "Binance" {
		t.Errorf("unexpected button order: %+v", got.rows[0].Buttons)
	}
	if *res.Prepared.Levels.Stop != 97 || *res.Prepared.Levels.TP2 != 106 {
		t.Errorf("unexpected levels: stop=%v tp2=%v", *res.Prepared.Levels.Stop, *res.Prepared.Levels.TP2)
	}
}

func TestService_SendNoChannel(t *testing.T) {
	d := &fakeDispatcher{}
	svc := newTestService(Router{}, d)

	_, err := svc.Send(context.Background(), btcEnvelope(""))
	if !errors.Is(err, ErrNoChannel) {
		t.Fatalf("expected ErrNoChannel, got %v", err)
	}
	if len(d.sent) != 0 {
		t.Errorf("nothing should be dispatched")
	}
}

func TestService_SendDispatchError(t *testing.T) {
	platformErr := errors.New("status 403")
	svc := newTestService(Router{Free: "free-chan"}, &fakeDispatcher{err: platformErr})

	_, err := svc.Send(context.Background(), btcEnvelope("free"))
	if !errors.Is(err, platformErr) {
		t.Fatalf("expected wrapped platform error, got %v", err)
	}
}

func TestService_PrepareDegrades(t *testing.T) {
	svc := newTestService(Router{}, nil)

	p := svc.Prepare(signal.Envelope{Payload: signal.Payload{Side: "sell"}})
	if p.Levels.Price != nil || p.Levels.Stop != nil {
		t.Errorf("expected no levels, got %+v", p.Levels)
	}
	if p.Confidence != 50 {
		t.Errorf("expected base confidence, got %d", p.Confidence)
	}
	if len(p.Links) != 0 || len(p.Rows) != 0 {
		t.Errorf("expected no links, got %+v", p.Links)
	}
	if p.Alert.Color != render.ColorBearish {
		t.Errorf("expected bearish color")
	}
}

func TestRouter_Pick(t *testing.T) {
	tests := []struct {
		name   string
		router Router
		tier   string
		want   string
	}{
		{"free default", Router{Free: "f", Pro: "p"}, "", "f"},
		{"pro", Router{Free: "f", Pro: "p"}, "pro", "p"},
		{"paid upper", Router{Free: "f", Pro: "p"}, "PAID", "p"},
		{"pro falls back to free", Router{Free: "f"}, "premium", "f"},
		{"free falls back to pro", Router{Pro: "p"}, "basic", "p"},
		{"nothing", Router{}, "pro", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.router.Pick(tt.tier); got != tt.want {
				t.Errorf("Pick(%q) = %q, want %q", tt.tier, got, tt.want)
			}
		})
	}
}
