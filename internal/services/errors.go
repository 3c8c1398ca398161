package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSource marks dataset failures: malformed manifests or missing
	// conditioning assets. Always skippable at the record level.
	ErrSource = errors.New("source error")
	// ErrCodec marks latent encoding failures, including shape mismatches
	// between background and mask latents.
	ErrCodec = errors.New("codec error")
	// ErrSampler marks model-internal generation failures. Fatal to the run:
	// a dead rank can leave collective peers waiting forever.
	ErrSampler = errors.New("sampler error")
	// ErrEmit marks filesystem or mux failures while writing artifacts.
	ErrEmit = errors.New("emit error")
	// ErrExternalTool marks failures launching or running external binaries.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks startup-time configuration problems.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSampler
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RunFatal reports whether the error must abort the whole run rather than the
// current record. Sampler failures always do; configuration failures never
// reach the per-record loop.
func RunFatal(err error) bool {
	return errors.Is(err, ErrSampler) || errors.Is(err, ErrConfiguration)
}

// Skippable reports whether the driver may advance past the failed record.
// Source failures are always skippable; codec failures only when the
// deployment opted into skip-on-codec-error.
func Skippable(err error, skipCodecFailures bool) bool {
	if errors.Is(err, ErrSource) {
		return true
	}
	if errors.Is(err, ErrCodec) {
		return skipCodecFailures
	}
	return false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
