package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	apperrors "github.com/edgard/recbot/internal/errors"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Denied Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "denied"
}

// Policy decides whether a user may run a command. An error means the
// decision could not be made.
type Policy interface {
	Decide(ctx context.Context, client ChatClient, user *models.User) (Decision, error)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, client ChatClient, user *models.User) (Decision, error)

// Decide calls f.
func (f PolicyFunc) Decide(ctx context.Context, client ChatClient, user *models.User) (Decision, error) {
	return f(ctx, client, user)
}

// OwnerOnly authorizes exactly one user id.
func OwnerOnly(ownerID int64) Policy {
	return PolicyFunc(func(_ context.Context, _ ChatClient, user *models.User) (Decision, error) {
		if user != nil && ownerID != 0 && user.ID == ownerID {
			return Authorized, nil
		}
		return Denied, nil
	})
}

// ChatAdmins authorizes the current administrators of a public chat, read
// live on every call. The optional owner is authorized without a lookup.
type ChatAdmins struct {
	Chat    string
	OwnerID int64
}

// Decide implements Policy.
func (p ChatAdmins) Decide(ctx context.Context, client ChatClient, user *models.User) (Decision, error) {
	if user == nil {
		return Denied, nil
	}
	if p.OwnerID != 0 && user.ID == p.OwnerID {
		return Authorized, nil
	}

	admins, err := client.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: "@" + p.Chat})
	if err != nil {
		return Denied, apperrors.NewUpstreamError("failed to fetch administrators of @"+p.Chat, err)
	}
	for _, member := range admins {
		if id, ok := memberUserID(member); ok && id == user.ID {
			return Authorized, nil
		}
	}
	return Denied, nil
}

func memberUserID(m models.ChatMember) (int64, bool) {
	switch {
	case m.Owner != nil && m.Owner.User != nil:
		return m.Owner.User.ID, true
	case m.Administrator != nil:
		return m.Administrator.User.ID, true
	default:
		return 0, false
	}
}

// RequirePolicy runs next only for authorized senders. Denied senders get
// no response. A sender the policy cannot decide on is treated as denied:
// the failure is logged and nothing is sent, since the sender may not be
// allowed to learn the command exists.
func RequirePolicy(deps HandlerDeps, name string, policy Policy) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "RequirePolicy", "policy", name)
			if update.Message == nil {
				return
			}
			msg := update.Message

			client := deps.client(b)
			decideCtx, cancel := withTimeout(ctx, deps.Config.Telegram.RequestTimeout)
			decision, err := policy.Decide(decideCtx, client, msg.From)
			cancel()

			if err != nil {
				log.ErrorContext(ctx, "Authorization check failed, ignoring command", "chat_id", msg.Chat.ID, "error", err)
				return
			}
			if decision != Authorized {
				var userID int64
				if msg.From != nil {
					userID = msg.From.ID
				}
				log.InfoContext(ctx, "Ignoring unauthorized command", "user_id", userID, "chat_id", msg.Chat.ID)
				return
			}
			next(ctx, b, update)
		}
	}
}
