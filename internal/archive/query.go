package archive

import (
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	apperrors "github.com/edgard/recbot/internal/errors"
)

// placeholder stands for "no explicit identity" in /rec_logs arguments.
const placeholder = "-"

// LogsArgs are the raw arguments of a /rec_logs command.
type LogsArgs struct {
	Selector string // first argument, may be empty
	Range    string // everything after the second space, may be empty
}

// ParseLogsArgs splits the text of a /rec_logs command into its arguments.
// The command word itself is discarded.
func ParseLogsArgs(text string) LogsArgs {
	parts := strings.SplitN(text, " ", 3)
	var args LogsArgs
	if len(parts) > 1 {
		args.Selector = parts[1]
	}
	if len(parts) > 2 {
		args.Range = parts[2]
	}
	return args
}

// ResolveIdentity picks whose messages to export. An explicit selector wins;
// "@name" is a username, an all-digit value is an id and anything else is a
// username. Without one, the sender of the replied-to message is used.
// The returned error carries apperrors.CodeSelector when neither applies.
func ResolveIdentity(selector string, replyTo *models.Message) (Identity, error) {
	if selector != "" && selector != placeholder {
		if name, ok := strings.CutPrefix(selector, "@"); ok {
			return ByUsername(name), nil
		}
		if isDigits(selector) {
			if id, err := strconv.ParseInt(selector, 10, 64); err == nil {
				return ByID(id), nil
			}
		}
		return ByUsername(selector), nil
	}

	if replyTo != nil && replyTo.From != nil {
		return ByID(replyTo.From.ID), nil
	}
	return Identity{}, apperrors.NewSelectorError("no identity in arguments or reply context")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
