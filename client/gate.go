package client

// GateDecision is the protected-route outcome for the current session state.
type GateDecision int

const (
	// GateWait renders a neutral loading indicator; the session is not yet
	// resolved. Never the protected content, never a redirect.
	GateWait GateDecision = iota
	// GateRedirect sends the user to the login entry point.
	GateRedirect
	// GateRender shows the protected content unchanged.
	GateRender
)

// Gate decides whether a protected view may render for the given state.
// Pure; callers re-evaluate it whenever session state changes.
func Gate(state SessionState) GateDecision {
	switch state {
	case StateUnknown:
		return GateWait
	case StateAuthenticated:
		return GateRender
	default:
		return GateRedirect
	}
}

// Gate is a convenience over the manager's current state.
func (m *SessionManager) Gate() GateDecision {
	return Gate(m.State())
}
