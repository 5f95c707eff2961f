package dialog

// Step enumerates the submission dialog states.
type Step int

const (
	StepSelectPlatform Step = iota
	StepEnterPlatformName
	StepEnterCode
	StepEnterDetails
)

func (s Step) String() string {
	switch s {
	case StepSelectPlatform:
		return "SELECT_PLATFORM"
	case StepEnterPlatformName:
		return "ENTER_PLATFORM_NAME"
	case StepEnterCode:
		return "ENTER_CODE"
	case StepEnterDetails:
		return "ENTER_DETAILS"
	default:
		return "UNKNOWN"
	}
}

// Session is the per-user submission dialog state. It lives in memory only;
// a restart abandons all in-progress submissions.
type Session struct {
	Platform string
	Code     string
	Step     Step
}

// Field limits are enforced at the step that captures each value, so the
// final step never fails validation downstream.
const (
	maxPlatformNameLength = 80
	maxCodeLength         = 120
	maxDetailsLength      = 100
)

// Platforms offered as quick choices when a submission starts.
var Platforms = []string{"Canva", "LinkedIn", "BigBasket", "Amazon", "Other"}

// OtherPlatform is the choice that routes to free-text platform entry.
const OtherPlatform = "Other"
