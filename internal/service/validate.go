package service

import (
	"strings"
	"unicode"

	"github.com/campusqa/peerboard/internal/apperr"
)

// Length caps shared by every text field in the subsystem.
const (
	maxTitleLen  = 100
	maxBodyLen   = 500
	maxReasonLen = 500
)

// validateText enforces the shared text rule: non-blank after trimming,
// within the length cap, and printable. Bodies may contain newlines and
// tabs; single-line fields (titles, subjects, reasons) may not.
func validateText(field, text string, maxLen int, multiline bool) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation("%s cannot be empty", field)
	}
	if len(text) > maxLen {
		return apperr.Validation("%s must be at most %d characters", field, maxLen)
	}
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' {
			if multiline {
				continue
			}
			return apperr.Validation("%s cannot contain line breaks", field)
		}
		if !unicode.IsPrint(r) {
			return apperr.Validation("%s contains non-printable characters", field)
		}
	}
	return nil
}
