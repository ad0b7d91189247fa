// Package pathutil provides name validation for journals and related
// on-disk artifacts. Journal names become directory names, so the rules
// are strict.
package pathutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/chainlog-project/chainlog/pkg/errclass"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateJournalName checks journal name safety.
func ValidateJournalName(name string) error {
	if name == "" {
		return errclass.ErrNameInvalid.WithMessage("journal name must not be empty")
	}

	// NFC normalize
	name = norm.NFC.String(name)

	if name == ".." || strings.Contains(name, "..") {
		return errclass.ErrNameInvalid.WithMessagef("journal name must not contain '..': %s", name)
	}

	if strings.ContainsAny(name, "/\\") {
		return errclass.ErrNameInvalid.WithMessagef("journal name must not contain separators: %s", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return errclass.ErrNameInvalid.WithMessagef("journal name must not contain control characters: %q", name)
		}
	}

	if !nameRegex.MatchString(name) {
		return errclass.ErrNameInvalid.WithMessagef("journal name must match [a-zA-Z0-9._-]+: %s", name)
	}

	return nil
}
