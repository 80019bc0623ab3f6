package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrServiceUnavailable indicates the inference endpoint failed or timed out.
var ErrServiceUnavailable = errors.New("inference service unavailable")
