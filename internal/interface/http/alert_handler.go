package httpapi

import (
	"errors"
	"net/http"

	"alphaflow-alerts/internal/application/alert"
	"alphaflow-alerts/internal/domain/signal"
	"alphaflow-alerts/internal/infrastructure/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// decodeEnvelope 解析請求主體；token 帶的 source 只在請求未指定時套用。
func (s *Server) decodeEnvelope(c *gin.Context) (signal.Envelope, bool) {
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "read body failed")
		return signal.Envelope{}, false
	}
	env, err := signal.DecodeEnvelope(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return signal.Envelope{}, false
	}
	if env.Source == signal.DefaultSource {
		if source := c.GetString(ctxTokenSource); source != "" {
			env.Source = source
		}
	}
	return env, true
}

func (s *Server) handleSend(c *gin.Context) {
	env, ok := s.decodeEnvelope(c)
	if !ok {
		return
	}

	res, err := s.svc.Send(c.Request.Context(), env)
	if err != nil {
		var dispatchErr *notify.DispatchError
		switch {
		case errors.Is(err, alert.ErrNoChannel):
			writeError(c, http.StatusInternalServerError, errCodeNoChannel, "no channel configured")
		case errors.As(err, &dispatchErr):
			writeDispatchError(c, http.StatusBadGateway, err.Error(), dispatchErr.Status, dispatchErr.Payload)
		default:
			s.logger.Error("send alert failed", zap.Error(err))
			writeDispatchError(c, http.StatusBadGateway, err.Error(), 0, nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"ok":         true,
		"channel_id": res.ChannelID,
		"confidence": res.Prepared.Confidence,
	})
}

// handlePreview renders the alert without dispatching it.
func (s *Server) handlePreview(c *gin.Context) {
	env, ok := s.decodeEnvelope(c)
	if !ok {
		return
	}

	p := s.svc.Prepare(env)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"tier":       alert.Tier(env.Tier),
		"confidence": p.Confidence,
		"alert":      p.Alert,
		"links":      p.Links,
		"components": p.Rows,
	})
}
