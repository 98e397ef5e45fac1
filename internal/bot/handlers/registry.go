package handlers

import (
	"slices"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Command names.
const (
	CommandStatus = "rec_status"
	CommandLogs   = "rec_logs"
)

// RegisteredHandler represents a command handler with its middleware.
type RegisteredHandler struct {
	Pattern     string
	Match       tgbot.MatchFunc
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	Description string
}

// CommandMatcher matches messages whose leading bot_command entity is
// /<command>, or /<command>@<botUsername> as group clients send it. A
// command addressed to another bot does not match.
func CommandMatcher(command, botUsername string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		name, ok := leadingCommand(update.Message)
		if !ok {
			return false
		}
		cmd, mention, addressed := strings.Cut(name, "@")
		if cmd != command {
			return false
		}
		return !addressed || (botUsername != "" && strings.EqualFold(mention, botUsername))
	}
}

// leadingCommand returns the command entity at the start of msg without
// its slash.
func leadingCommand(msg *models.Message) (string, bool) {
	for _, e := range msg.Entities {
		if e.Type != models.MessageEntityTypeBotCommand || e.Offset != 0 {
			continue
		}
		if e.Length < 2 || e.Length > len(msg.Text) {
			return "", false
		}
		return msg.Text[1:e.Length], true
	}
	return "", false
}

// RegisterAllCommands returns every command keyed by its slash form.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	tg := deps.Config.Telegram
	handlers := make(map[string]RegisteredHandler)

	handlers["/"+CommandStatus] = RegisteredHandler{
		Pattern:     CommandStatus,
		Match:       CommandMatcher(CommandStatus, deps.BotUsername),
		Handler:     NewStatusHandler(deps),
		Middleware:  []tgbot.Middleware{RequirePolicy(deps, "owner", OwnerOnly(tg.OwnerID))},
		Description: deps.Config.Messages.StatusCommand,
	}
	handlers["/"+CommandLogs] = RegisteredHandler{
		Pattern:     CommandLogs,
		Match:       CommandMatcher(CommandLogs, deps.BotUsername),
		Handler:     NewLogsHandler(deps),
		Middleware:  []tgbot.Middleware{RequirePolicy(deps, "chat_admins", ChatAdmins{Chat: tg.ArchiveChat, OwnerID: tg.OwnerID})},
		Description: deps.Config.Messages.LogsCommand,
	}

	return handlers
}

// BotCommands lists the commands for setMyCommands, sorted by name.
func BotCommands(registered map[string]RegisteredHandler) []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(registered))
	for _, h := range registered {
		if h.Description == "" {
			continue
		}
		cmds = append(cmds, models.BotCommand{Command: h.Pattern, Description: h.Description})
	}
	slices.SortFunc(cmds, func(a, b models.BotCommand) int { return strings.Compare(a.Command, b.Command) })
	return cmds
}
