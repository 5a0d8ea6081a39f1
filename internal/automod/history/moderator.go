package history

// autoModName is the value persisted for entries created by the
// auto-moderation engine.
const autoModName = "AutoMod"

// Moderator identifies who took a moderation action: either the automated
// engine or a human identified by their user ID. The zero value is the
// automated moderator.
type Moderator struct {
	id string
}

// AutoMod is the automated moderator.
var AutoMod = Moderator{}

// Human returns a moderator for the given user ID.
func Human(id string) Moderator {
	return Moderator{id: id}
}

// IsAutomated reports whether the action was taken by the engine.
func (m Moderator) IsAutomated() bool {
	return m.id == ""
}

// String returns the persisted representation: "AutoMod" for automated
// actions, otherwise the human's user ID.
func (m Moderator) String() string {
	if m.IsAutomated() {
		return autoModName
	}

	return m.id
}

// MarshalJSON persists the moderator as a plain string.
func (m Moderator) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts the plain-string form. Anything that is not
// "AutoMod" is treated as a human moderator ID.
func (m *Moderator) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == autoModName {
		*m = AutoMod
		return nil
	}

	*m = Moderator{id: s}

	return nil
}
