// Package speech reads recipe steps aloud using Azure text-to-speech and
// the system audio output.
package speech

import (
	"context"

	"github.com/hammamikhairi/recipeit/internal/domain"
	"github.com/hammamikhairi/recipeit/internal/logger"
)

var _ domain.Narrator = (*NoOp)(nil)

// NoOp is the narrator used when speech is disabled.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent narrator.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak returns ErrNotImplemented so the UI can say narration is off.
func (n *NoOp) Speak(ctx context.Context, text string) error {
	n.log.Debug("speech disabled: would say %q", text)
	return domain.ErrNotImplemented
}

// Stop does nothing.
func (n *NoOp) Stop() {}
