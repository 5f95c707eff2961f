package bot

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IntentKind is the closed set of actions the bot understands.
type IntentKind int

const (
	IntentStart IntentKind = iota
	IntentSubmitCoupon
	IntentListPlatforms
	IntentAbout
	IntentPlatformChosen
	IntentViewPlatform
	IntentClaimCoupon
	IntentVerifyMembership
	IntentFreeText
)

func (k IntentKind) String() string {
	switch k {
	case IntentStart:
		return "start"
	case IntentSubmitCoupon:
		return "submit_coupon"
	case IntentListPlatforms:
		return "list_platforms"
	case IntentAbout:
		return "about"
	case IntentPlatformChosen:
		return "platform_chosen"
	case IntentViewPlatform:
		return "view_platform"
	case IntentClaimCoupon:
		return "claim_coupon"
	case IntentVerifyMembership:
		return "verify_membership"
	case IntentFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

// Intent is a tagged inbound event, parsed at the transport boundary so
// dispatch is an exhaustive switch instead of string-prefix branching.
type Intent struct {
	Kind     IntentKind
	Platform string
	CouponID string
	Text     string
}

// menu button labels
const (
	menuSubmitCoupon     = "📤 Submit Coupon"
	menuAvailableCoupons = "📜 Available Coupons"
	menuAbout            = "ℹ️ About Us"
)

// callback data prefixes
const (
	callbackPlatformPrefix = "plt_"
	callbackViewPrefix     = "view_"
	callbackClaimPrefix    = "claim_"
	callbackVerifyPrefix   = "verify_"
)

// ParseMessage classifies an inbound text message.
func ParseMessage(text string) Intent {
	switch strings.TrimSpace(text) {
	case "/start":
		return Intent{Kind: IntentStart}
	case menuSubmitCoupon:
		return Intent{Kind: IntentSubmitCoupon}
	case menuAvailableCoupons:
		return Intent{Kind: IntentListPlatforms}
	case menuAbout:
		return Intent{Kind: IntentAbout}
	default:
		return Intent{Kind: IntentFreeText, Text: strings.TrimSpace(text)}
	}
}

// ParseCallback classifies an inline button payload.
func ParseCallback(data string) (Intent, error) {
	switch {
	case strings.HasPrefix(data, callbackPlatformPrefix):
		platform := data[len(callbackPlatformPrefix):]
		if platform == "" {
			return Intent{}, fmt.Errorf("empty platform in callback %q", data)
		}
		return Intent{Kind: IntentPlatformChosen, Platform: platform}, nil

	case strings.HasPrefix(data, callbackViewPrefix):
		platform := data[len(callbackViewPrefix):]
		if platform == "" {
			return Intent{}, fmt.Errorf("empty platform in callback %q", data)
		}
		return Intent{Kind: IntentViewPlatform, Platform: platform}, nil

	case strings.HasPrefix(data, callbackClaimPrefix):
		id := data[len(callbackClaimPrefix):]
		if _, err := uuid.Parse(id); err != nil {
			return Intent{}, fmt.Errorf("invalid coupon id in callback %q: %w", data, err)
		}
		return Intent{Kind: IntentClaimCoupon, CouponID: id}, nil

	case strings.HasPrefix(data, callbackVerifyPrefix):
		id := data[len(callbackVerifyPrefix):]
		if _, err := uuid.Parse(id); err != nil {
			return Intent{}, fmt.Errorf("invalid coupon id in callback %q: %w", data, err)
		}
		return Intent{Kind: IntentVerifyMembership, CouponID: id}, nil

	default:
		return Intent{}, fmt.Errorf("unrecognized callback %q", data)
	}
}
