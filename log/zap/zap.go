package zap

import (
	"go.uber.org/zap"

	"github.com/unkn0wn-root/prefixcache"
)

// ZapLogger adapts a *zap.Logger to the cache's Logger interface.
type ZapLogger struct{ L *zap.Logger }

var _ prefixcache.Logger = ZapLogger{}

func (z ZapLogger) Debug(msg string, f prefixcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f prefixcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f prefixcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f prefixcache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f prefixcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
