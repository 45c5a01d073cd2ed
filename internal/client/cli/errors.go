package cli

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/checkout"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
)

// usageError is a console-side message shown to the user verbatim.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// localErrors are produced by the console itself and are safe to print.
var localErrors = []error{
	services.ErrNotFound,
	services.ErrNotEditing,
	services.ErrRecordBusy,
	services.ErrNotConfigured,
	services.ErrPaymentInFlight,
	services.ErrAlreadyPaid,
	services.ErrBillNotFound,
	checkout.ErrCheckoutTimeout,
	checkout.ErrNotStarted,
}

// describeError maps err onto the line printed under a failed command.
func describeError(err error) string {
	var ue *usageError
	if errors.As(err, &ue) {
		return ue.msg
	}

	if errors.Is(err, services.ErrNoSession) {
		return "Please log in first (type 'login')."
	}
	if errors.Is(err, services.ErrSessionExpired) {
		return "Your session expired. Please log in again."
	}

	var rm *services.RoleMismatchError
	if errors.As(err, &rm) {
		return fmt.Sprintf("%s. Your home view is '%s'.", capitalize(rm.Error()), rm.Home)
	}

	for _, le := range localErrors {
		if errors.Is(err, le) {
			return capitalize(le.Error()) + "."
		}
	}

	return api.UserMessage(err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSuffix(string(r), ".")
}
