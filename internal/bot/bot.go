package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/coupon-saver/internal/config"
	"github.com/spec-kit/coupon-saver/internal/dialog"
	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/internal/observability"
	"github.com/spec-kit/coupon-saver/internal/parser"
	"github.com/spec-kit/coupon-saver/internal/service"
)

// API is the slice of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// NewAPI authorizes the long-lived Telegram connection once at startup and
// switches it to long polling.
func NewAPI(cfg config.BotConfig, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	if cfg.Token == "" {
		return nil, errors.New("BOT_TOKEN not provided")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	// long polling only; drop any previously configured webhook
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn("could not delete webhook", zap.Error(err))
	}

	if cfg.Username != "" && !strings.EqualFold(api.Self.UserName, cfg.Username) {
		logger.Warn("token belongs to a different bot than configured",
			zap.String("configured", cfg.Username),
			zap.String("authorized", api.Self.UserName),
		)
	}
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return api, nil
}

// MemberChecker answers channel membership questions against Telegram.
type MemberChecker struct {
	api     API
	channel string
}

// NewMemberChecker constructs a checker for the required channel.
func NewMemberChecker(api API, channel string) *MemberChecker {
	return &MemberChecker{api: api, channel: channel}
}

// IsChatMember reports whether the user belongs to the required channel.
func (c *MemberChecker) IsChatMember(ctx context.Context, userID int64) (bool, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: c.channel,
			UserID:             userID,
		},
	})
	if err != nil {
		return false, err
	}
	switch member.Status {
	case "creator", "administrator", "member", "restricted":
		return true, nil
	default:
		return false, nil
	}
}

// Bot routes inbound Telegram updates to the dialog, claim and listing flows.
type Bot struct {
	api        API
	cfg        config.BotConfig
	logger     *zap.Logger
	metrics    *observability.Metrics
	dialogs    *dialog.Manager
	claims     *service.ClaimService
	coupons    *service.CouponService
	membership *service.MembershipService
	listLimit  int

	wg sync.WaitGroup
}

// Dependencies bundles collaborators for the bot.
type Dependencies struct {
	API        API
	Config     config.BotConfig
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Dialogs    *dialog.Manager
	Claims     *service.ClaimService
	Coupons    *service.CouponService
	Membership *service.MembershipService
	ListLimit  int
}

// New constructs the bot router.
func New(deps Dependencies) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	listLimit := deps.ListLimit
	if listLimit <= 0 {
		listLimit = 10
	}
	return &Bot{
		api:        deps.API,
		cfg:        deps.Config,
		logger:     logger,
		metrics:    deps.Metrics,
		dialogs:    deps.Dialogs,
		claims:     deps.Claims,
		coupons:    deps.Coupons,
		membership: deps.Membership,
		listLimit:  listLimit,
	}
}

// Run consumes updates with a bounded worker pool until ctx is cancelled.
// Per-user ordering is enforced inside the dialog and claim layers, not here.
func (b *Bot) Run(ctx context.Context) {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)

	for i := 0; i < b.cfg.Workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for update := range updates {
				b.handleUpdate(ctx, update)
			}
		}()
	}

	<-ctx.Done()
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

// Announce posts to the community channel.
func (b *Bot) Announce(text string) error {
	msg := tgbotapi.NewMessageToChannel(b.cfg.RequiredChannel, text)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	intent := ParseMessage(msg.Text)
	b.metrics.RecordUpdate(intent.Kind.String())

	switch intent.Kind {
	case IntentStart:
		b.dialogs.Reset(userID)
		b.sendMenu(chatID, "Welcome to Coupon Saver! Select an option below to get started:")

	case IntentSubmitCoupon:
		prompt := b.dialogs.Begin(userID)
		b.sendPrompt(chatID, prompt)

	case IntentListPlatforms:
		b.sendAvailablePlatforms(ctx, chatID)

	case IntentAbout:
		b.reply(chatID, fmt.Sprintf(
			"🌟 *About Coupon Saver*\n\nThis bot is a community-driven platform where users voluntarily share coupons they won't use so others can benefit.\n\n✅ *Voluntary Submissions*\n✅ *Verified Claims*\n✅ *Fair Use Policy (%d claims/day)*\n\nMade with ❤️ for savers!",
			b.claims.DailyLimit()))

	case IntentFreeText:
		b.handleFreeText(ctx, chatID, userID, intent.Text)

	case IntentPlatformChosen, IntentViewPlatform, IntentClaimCoupon, IntentVerifyMembership:
		// button-only intents never arrive as plain text
	}
}

func (b *Bot) handleFreeText(ctx context.Context, chatID, userID int64, text string) {
	prompt, coupon, handled, err := b.dialogs.HandleText(ctx, userID, text)
	if handled {
		if err != nil {
			b.logger.Warn("submission step failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		if coupon != nil {
			b.logger.Info("submission completed",
				zap.String("coupon_id", coupon.ID),
				zap.Int64("user_id", userID),
			)
		}
		b.sendPrompt(chatID, prompt)
		return
	}

	// no open session: try to auto-detect a coupon in the message
	parsed, ok := parser.Parse(text)
	if !ok {
		return
	}
	saved, err := b.coupons.SaveCoupon(ctx, userID, parsed.Code, parsed.Platform, parsed.Details)
	if err != nil {
		b.logger.Warn("auto-detected coupon save failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "⚠️ Something went wrong while saving your coupon. Please try again.")
		return
	}
	b.reply(chatID, fmt.Sprintf(
		"✅ Detected a coupon for *%s* and added it to the pool:\n`%s`", saved.Platform, saved.Code))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// ack the tap so the client stops the spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Debug("callback ack failed", zap.Error(err))
	}
	if cq.Message == nil {
		return
	}

	chatID := cq.Message.Chat.ID
	userID := cq.From.ID

	intent, err := ParseCallback(cq.Data)
	if err != nil {
		b.logger.Debug("ignoring callback", zap.String("data", cq.Data), zap.Error(err))
		return
	}
	b.metrics.RecordUpdate(intent.Kind.String())

	switch intent.Kind {
	case IntentPlatformChosen:
		prompt, ok := b.dialogs.ChoosePlatform(userID, intent.Platform)
		if ok {
			b.sendPrompt(chatID, prompt)
		}

	case IntentViewPlatform:
		b.sendCouponsForPlatform(ctx, chatID, intent.Platform)

	case IntentClaimCoupon:
		b.processClaim(ctx, chatID, userID, intent.CouponID)

	case IntentVerifyMembership:
		if !b.membership.IsMember(ctx, userID) {
			b.reply(chatID, fmt.Sprintf(
				"❌ You still haven't joined the channel. Please join %s and click verify again!",
				b.membership.RequiredChannel()))
			return
		}
		b.processClaim(ctx, chatID, userID, intent.CouponID)

	case IntentStart, IntentSubmitCoupon, IntentListPlatforms, IntentAbout, IntentFreeText:
		// message-only intents never arrive as callbacks
	}
}

func (b *Bot) processClaim(ctx context.Context, chatID, userID int64, couponID string) {
	if !b.membership.IsMember(ctx, userID) {
		msg := tgbotapi.NewMessage(chatID, "🔒 *Join Required*")
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = joinRequiredKeyboard(b.membership.RequiredChannel(), couponID)
		b.send(msg)
		return
	}

	coupon, err := b.claims.Claim(ctx, couponID, userID)
	switch {
	case errors.Is(err, domain.ErrLimitReached):
		b.metrics.RecordClaim("limit_reached")
		b.reply(chatID, fmt.Sprintf(
			"❌ *Daily Limit Reached*\nYou can only claim up to %d coupons every 24 hours!",
			b.claims.DailyLimit()))

	case errors.Is(err, domain.ErrNotAvailable):
		b.metrics.RecordClaim("not_available")
		b.reply(chatID, "❌ Sorry, this coupon was just claimed by another user.")

	case err != nil:
		b.metrics.RecordClaim("error")
		b.logger.Error("claim failed", zap.String("coupon_id", couponID), zap.Error(err))
		b.reply(chatID, "⚠️ Something went wrong. Please try again in a moment.")

	default:
		b.metrics.RecordClaim("success")
		b.reply(chatID, fmt.Sprintf(
			"✅ *Coupon Claimed!*\n\nYour code/link is:\n`%s`\n\nℹ️ *Coupon Description:*\n_%s_\n\nUse it quickly before it expires!",
			coupon.Code, coupon.DetailsText()))
	}
}

func (b *Bot) sendAvailablePlatforms(ctx context.Context, chatID int64) {
	platforms, err := b.coupons.AvailablePlatforms(ctx)
	if err != nil {
		b.logger.Error("list platforms failed", zap.Error(err))
		b.reply(chatID, "⚠️ Could not load the coupon pool. Please try again.")
		return
	}
	if len(platforms) == 0 {
		b.reply(chatID, "No coupons are available at the moment.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "📌 *Available Platforms*")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = availablePlatformsKeyboard(platforms)
	b.send(msg)
}

func (b *Bot) sendCouponsForPlatform(ctx context.Context, chatID int64, platform string) {
	coupons, err := b.coupons.ListAvailableByPlatform(ctx, platform, b.listLimit)
	if err != nil {
		b.logger.Error("list coupons failed", zap.String("platform", platform), zap.Error(err))
		b.reply(chatID, "⚠️ Could not load coupons. Please try again.")
		return
	}
	if len(coupons) == 0 {
		b.reply(chatID, fmt.Sprintf("No %s coupons are available right now.", platform))
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🎁 *%s Coupons*", platform))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = couponListKeyboard(coupons)
	b.send(msg)
}

func (b *Bot) sendPrompt(chatID int64, prompt dialog.Prompt) {
	if prompt.Text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, prompt.Text)
	if prompt.PlatformOptions {
		msg.ReplyMarkup = platformChoiceKeyboard()
	}
	b.send(msg)
}

func (b *Bot) sendMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send failed", zap.Error(err))
	}
}
