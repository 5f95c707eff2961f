package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/spec-kit/coupon-saver/internal/dialog"
	"github.com/spec-kit/coupon-saver/internal/domain"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuSubmitCoupon),
			tgbotapi.NewKeyboardButton(menuAvailableCoupons),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuAbout),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

func platformChoiceKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dialog.Platforms))
	for _, platform := range dialog.Platforms {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(platform, callbackPlatformPrefix+platform),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func availablePlatformsKeyboard(platforms []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(platforms))
	for _, platform := range platforms {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(platform, callbackViewPrefix+platform),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func couponListKeyboard(coupons []domain.Coupon) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(coupons))
	for _, coupon := range coupons {
		label := coupon.DetailsText()
		if label == "" {
			label = coupon.Platform + " coupon"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackClaimPrefix+coupon.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func joinRequiredKeyboard(channel, couponID string) tgbotapi.InlineKeyboardMarkup {
	joinURL := "https://t.me/" + stripAt(channel)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Join Channel", joinURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I Joined", callbackVerifyPrefix+couponID),
		),
	)
}

func stripAt(channel string) string {
	if len(channel) > 0 && channel[0] == '@' {
		return channel[1:]
	}
	return channel
}
