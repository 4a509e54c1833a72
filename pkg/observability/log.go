package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// SectionHooks, CacheHooks and HTTPHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger, prefixed "trace".
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

func (h *LogHooks) OnAssembleStart(_ context.Context, policy string, columns int) {
	h.logger.Debug("assemble start", "policy", policy, "columns", columns)
}

func (h *LogHooks) OnAssembleComplete(_ context.Context, policy string, columns int, d time.Duration, err error) {
	h.done("assemble", d, err, "policy", policy, "columns", columns)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", d, err, "formats", formats)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) done(stage string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "duration", d)
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "error", err)...)
		return
	}
	h.logger.Debug(stage+" done", kv...)
}

var (
	_ SectionHooks = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
