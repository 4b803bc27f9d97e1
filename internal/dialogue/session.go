package dialogue

// Stage identifies where a session sits in the scripted conversation.
type Stage string

const (
	StageWelcome        Stage = "welcome"
	StageAskName        Stage = "ask_name"
	StageConfirmName    Stage = "confirm_name"
	StageMainMenu       Stage = "main_menu"
	StageGetVehicle     Stage = "get_vehicle"
	StageConfirmVehicle Stage = "confirm_vehicle"
	StageGetDate        Stage = "get_date"
	StageConfirmDate    Stage = "confirm_date"
	StageGetTime        Stage = "get_time"
	StageConfirmTime    Stage = "confirm_time"
	StageFinalAsk       Stage = "final_ask"
	StageCheckStatus    Stage = "check_status"
)

// Session carries everything collected from a caller so far. Each caller
// gets their own session keyed by ID; nothing is shared between callers.
type Session struct {
	ID       string `json:"id"`
	Stage    Stage  `json:"stage"`
	Name     string `json:"name,omitempty"`
	Vehicle  string `json:"vehicle,omitempty"`
	PrefDate string `json:"pref_date,omitempty"`
	PrefTime string `json:"pref_time,omitempty"`
}

// NewSession returns a fresh session at the welcome stage.
func NewSession(id string) *Session {
	return &Session{ID: id, Stage: StageWelcome}
}

// Reset clears collected fields and returns the session to the welcome stage.
func (s *Session) Reset() {
	s.Stage = StageWelcome
	s.Name = ""
	s.Vehicle = ""
	s.PrefDate = ""
	s.PrefTime = ""
}

// FirstName returns the first word of the caller's name, used when
// addressing them in replies.
func (s *Session) FirstName() string {
	for i := 0; i < len(s.Name); i++ {
		if s.Name[i] == ' ' {
			return s.Name[:i]
		}
	}
	return s.Name
}
