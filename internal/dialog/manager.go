package dialog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/coupon-saver/internal/domain"
	"github.com/spec-kit/coupon-saver/pkg/util"
)

// CouponSaver persists a completed submission.
type CouponSaver interface {
	SaveCoupon(ctx context.Context, submittedBy int64, code, platform, details string) (*domain.Coupon, error)
}

// Prompt is the single outbound message a transition may produce.
type Prompt struct {
	Text string
	// PlatformOptions asks the transport to render the platform choices.
	PlatformOptions bool
}

// Manager owns all submission sessions. Sessions are keyed by user id and
// every transition for one user runs under a per-user lock, so duplicate or
// concurrent deliveries cannot corrupt state.
type Manager struct {
	mu        sync.Mutex
	sessions  map[int64]*Session
	userLocks *util.KeyedMutex
	coupons   CouponSaver
	logger    *zap.Logger
}

// NewManager constructs a session manager.
func NewManager(coupons CouponSaver, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[int64]*Session),
		userLocks: util.NewKeyedMutex(),
		coupons:   coupons,
		logger:    logger,
	}
}

// Begin starts (or restarts) a submission dialog for the user.
func (m *Manager) Begin(userID int64) Prompt {
	m.userLocks.Lock(userID)
	defer m.userLocks.Unlock(userID)

	m.put(userID, &Session{Step: StepSelectPlatform})
	return Prompt{Text: "Which platform is this coupon for?", PlatformOptions: true}
}

// ChoosePlatform handles a platform button selection. It reports false when
// the user has no session awaiting a platform choice.
func (m *Manager) ChoosePlatform(userID int64, platform string) (Prompt, bool) {
	m.userLocks.Lock(userID)
	defer m.userLocks.Unlock(userID)

	session, ok := m.get(userID)
	if !ok || session.Step != StepSelectPlatform {
		return Prompt{}, false
	}

	if platform == OtherPlatform {
		m.put(userID, &Session{Step: StepEnterPlatformName})
		return Prompt{Text: "Please type the name of the platform:"}, true
	}

	m.put(userID, &Session{Platform: platform, Step: StepEnterCode})
	return Prompt{Text: fmt.Sprintf("Selected: %s. Now please paste the Coupon Code or Link:", platform)}, true
}

// HandleText advances the dialog with free text. It reports false when the
// user has no session or the session does not consume free text, leaving the
// input to top-level dispatch. On completion the persisted coupon is
// returned; a store failure keeps the session so the user can retry.
func (m *Manager) HandleText(ctx context.Context, userID int64, text string) (Prompt, *domain.Coupon, bool, error) {
	m.userLocks.Lock(userID)
	defer m.userLocks.Unlock(userID)

	session, ok := m.get(userID)
	if !ok {
		return Prompt{}, nil, false, nil
	}

	switch session.Step {
	case StepEnterPlatformName:
		if len(text) > maxPlatformNameLength {
			return Prompt{Text: "❌ That platform name is too long.\nPlease keep it under 80 characters:"}, nil, true, nil
		}
		m.put(userID, &Session{Platform: text, Step: StepEnterCode})
		return Prompt{Text: fmt.Sprintf("Platform set to: %s. Now please paste the Coupon Code or redeem link:", text)}, nil, true, nil

	case StepEnterCode:
		if len(text) > maxCodeLength {
			return Prompt{Text: "❌ That code or link is too long.\nPlease paste a code or link of at most 120 characters:"}, nil, true, nil
		}
		m.put(userID, &Session{Platform: session.Platform, Code: text, Step: StepEnterDetails})
		return Prompt{Text: "Great! Now enter a one-line description (max 100 characters, no line breaks):"}, nil, true, nil

	case StepEnterDetails:
		if len(text) > maxDetailsLength || strings.Contains(text, "\n") {
			return Prompt{Text: "❌ Description too long or multi-line.\nPlease keep it to one short sentence (max 100 characters)."}, nil, true, nil
		}
		coupon, err := m.coupons.SaveCoupon(ctx, userID, session.Code, session.Platform, text)
		if err != nil {
			m.logger.Warn("coupon save failed, session kept",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return Prompt{Text: "⚠️ Could not save your coupon right now. Please try sending the description again."}, nil, true, err
		}
		m.remove(userID)
		return Prompt{Text: fmt.Sprintf("✅ Success! Your coupon for %s has been added.", coupon.Platform)}, coupon, true, nil

	default:
		// SELECT_PLATFORM consumes button input only
		return Prompt{}, nil, false, nil
	}
}

// Reset destroys the user's session unconditionally. It reports whether a
// session existed.
func (m *Manager) Reset(userID int64) bool {
	m.userLocks.Lock(userID)
	defer m.userLocks.Unlock(userID)

	_, existed := m.get(userID)
	m.remove(userID)
	return existed
}

// Active reports whether the user has an open submission session.
func (m *Manager) Active(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	return ok
}

// Snapshot returns a copy of the user's session, if any.
func (m *Manager) Snapshot(userID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

func (m *Manager) get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	return session, ok
}

func (m *Manager) put(userID int64, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = session
}

func (m *Manager) remove(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
