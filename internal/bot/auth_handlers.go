package bot

import (
	"context"
	"strings"

	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

func (b *Bot) startLogin(ctx context.Context, chatID int64) {
	if session := b.getSession(ctx, chatID); session != nil {
		b.sendMessage(chatID, "You are already signed in as "+session.Username+". Use /logout to switch accounts.")
		return
	}
	b.setStep(ctx, chatID, stepLoginUsername, nil)
	b.sendMessage(chatID, "🔐 Enter your username:")
}

func (b *Bot) startRegister(ctx context.Context, chatID int64) {
	if session := b.getSession(ctx, chatID); session != nil {
		b.sendMessage(chatID, "You are already signed in as "+session.Username+".")
		return
	}
	b.setStep(ctx, chatID, stepRegisterUsername, nil)
	b.sendMessage(chatID, "📝 Pick a username:")
}

func (b *Bot) handleAuthStep(ctx context.Context, chatID int64, text string, state *models.FlowState) bool {
	text = strings.TrimSpace(text)

	switch state.Step {
	case stepLoginUsername:
		if text == "" {
			b.sendMessage(chatID, "Username cannot be empty. Try again:")
			return true
		}
		b.setStep(ctx, chatID, stepLoginPassword, map[string]interface{}{"username": text})
		b.sendMessage(chatID, "Enter your password:")
		return true

	case stepLoginPassword:
		username := state.GetString("username")
		b.clearFlow(ctx, chatID)
		b.login(ctx, chatID, username, text)
		return true

	case stepRegisterUsername:
		if text == "" {
			b.sendMessage(chatID, "Username cannot be empty. Try again:")
			return true
		}
		b.setStep(ctx, chatID, stepRegisterEmail, map[string]interface{}{"username": text})
		b.sendMessage(chatID, "Enter your email:")
		return true

	case stepRegisterEmail:
		if !strings.Contains(text, "@") {
			b.sendMessage(chatID, "That does not look like an email. Try again:")
			return true
		}
		if state.Data == nil {
			state.Data = make(map[string]interface{})
		}
		state.Data["email"] = text
		b.setStep(ctx, chatID, stepRegisterPassword, state.Data)
		b.sendMessage(chatID, "Choose a password:")
		return true

	case stepRegisterPassword:
		username := state.GetString("username")
		email := state.GetString("email")
		b.clearFlow(ctx, chatID)

		if err := b.backend.Register(ctx, username, email, text); err != nil {
			b.sendMessage(chatID, "❌ Registration failed: "+err.Error())
			return true
		}
		b.sendMessage(chatID, "✅ Account created! Signing you in...")
		b.login(ctx, chatID, username, text)
		return true
	}
	return false
}

func (b *Bot) login(ctx context.Context, chatID int64, username, password string) {
	session, err := b.backend.Login(ctx, username, password)
	if err != nil {
		b.sendMessage(chatID, "❌ Login failed: "+err.Error())
		return
	}

	session.ChatID = chatID
	if err := b.sessions.Put(ctx, session); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to store session")
		b.sendMessage(chatID, "❌ Could not save your session. Please try again.")
		return
	}

	greeting := "✅ Signed in as " + session.Username + "."
	if session.IsAdmin {
		greeting += " You have administrator access."
	}
	b.sendMessage(chatID, greeting)
	b.sendMainMenu(ctx, chatID)
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) {
	session := b.getSession(ctx, chatID)
	if session == nil {
		b.sendMessage(chatID, "You are not signed in.")
		return
	}

	b.clearFlow(ctx, chatID)
	if err := b.sessions.Delete(ctx, chatID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to delete session")
		b.sendMessage(chatID, "❌ Could not log you out. Please try again.")
		return
	}

	b.sendMessage(chatID, "👋 Logged out. See you next time!")
	b.sendMainMenu(ctx, chatID)
}

func (b *Bot) showProfile(ctx context.Context, chatID int64) {
	session := b.requireSession(ctx, chatID)
	if session == nil {
		return
	}

	profile, err := b.backend.Profile(ctx, session.Token)
	if err != nil {
		b.handleBackendError(ctx, chatID, err)
		return
	}

	role := "guest"
	if session.IsAdmin {
		role = "administrator"
	}
	b.sendHTML(chatID,
		"👤 <b>"+profile.Username+"</b>\n✉️ "+profile.Email+"\n🔑 Role: "+role, nil)
}

func (b *Bot) setStep(ctx context.Context, chatID int64, step string, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}
	if err := b.stateService.SetFlowState(ctx, chatID, step, data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Str("step", step).Msg("Failed to set flow state")
	}
}
