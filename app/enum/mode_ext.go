package enum

// Toggle returns the opposite mode (enabled↔disabled).
func (m Mode) Toggle() Mode {
	if m == ModeEnabled {
		return ModeDisabled
	}
	return ModeEnabled
}

// ModeFromStored maps a stored value to a mode. Only the exact "enabled" string turns
// the mode on, absent or unrecognized values are treated as disabled.
func ModeFromStored(v string) Mode {
	m, err := ParseMode(v)
	if err != nil {
		return ModeDisabled
	}
	return m
}
