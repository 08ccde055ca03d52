package mcp

import (
	"time"

	"go.uber.org/zap"
)

// auditTool records one tool invocation. Only call metadata is logged,
// never signal or snapshot payloads.
func (s *Server) auditTool(tool string, start time.Time, err error, params map[string]string) {
	status := "success"
	if err != nil {
		status = "error"
	}

	fields := []zap.Field{
		zap.String("tool", tool),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.String("status", status),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if len(params) > 0 {
		fields = append(fields, zap.Any("params", params))
	}
	s.logger.Info("tool call", fields...)
}
