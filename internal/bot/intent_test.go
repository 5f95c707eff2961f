package bot

import (
	"testing"
)

func TestParseMessage(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{"start command", "/start", Intent{Kind: IntentStart}},
		{"start with whitespace", "  /start  ", Intent{Kind: IntentStart}},
		{"submit button", "📤 Submit Coupon", Intent{Kind: IntentSubmitCoupon}},
		{"available button", "📜 Available Coupons", Intent{Kind: IntentListPlatforms}},
		{"about button", "ℹ️ About Us", Intent{Kind: IntentAbout}},
		{"free text", "SAVE20 on canva.com", Intent{Kind: IntentFreeText, Text: "SAVE20 on canva.com"}},
		{"free text trimmed", "  hello  ", Intent{Kind: IntentFreeText, Text: "hello"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseMessage(tc.text)
			if got != tc.want {
				t.Fatalf("ParseMessage(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseCallback(t *testing.T) {
	const validID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

	cases := []struct {
		name    string
		data    string
		want    Intent
		wantErr bool
	}{
		{"platform chosen", "plt_Canva", Intent{Kind: IntentPlatformChosen, Platform: "Canva"}, false},
		{"view platform", "view_LinkedIn", Intent{Kind: IntentViewPlatform, Platform: "LinkedIn"}, false},
		{"claim", "claim_" + validID, Intent{Kind: IntentClaimCoupon, CouponID: validID}, false},
		{"verify", "verify_" + validID, Intent{Kind: IntentVerifyMembership, CouponID: validID}, false},
		{"empty platform", "plt_", Intent{}, true},
		{"empty view platform", "view_", Intent{}, true},
		{"claim bad id", "claim_not-a-uuid", Intent{}, true},
		{"verify bad id", "verify_not-a-uuid", Intent{}, true},
		{"unknown payload", "nuke_everything", Intent{}, true},
		{"empty payload", "", Intent{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCallback(tc.data)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseCallback(%q) expected error, got %+v", tc.data, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCallback(%q) unexpected error: %v", tc.data, err)
			}
			if got != tc.want {
				t.Fatalf("ParseCallback(%q) = %+v, want %+v", tc.data, got, tc.want)
			}
		})
	}
}

func TestIntentKindString(t *testing.T) {
	if IntentClaimCoupon.String() != "claim_coupon" {
		t.Fatalf("unexpected string: %s", IntentClaimCoupon)
	}
	if IntentKind(99).String() != "unknown" {
		t.Fatalf("out-of-range kind must stringify as unknown")
	}
}
