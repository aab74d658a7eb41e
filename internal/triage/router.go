package triage

// Outcome is the routing decision for a message.
type Outcome string

const (
	OutcomeAccepted      Outcome = "ACCEPTED"
	OutcomeRejectedVague Outcome = "REJECTED_VAGUE"
	OutcomeIgnored       Outcome = "IGNORED"
)

const (
	// DefaultMinMessageLength is the shortest question, in characters, that is accepted.
	DefaultMinMessageLength = 15

	// VagueInstruction asks the author to resubmit with more detail.
	VagueInstruction = "Your question is too vague. Add technical detail such as the service name or the error message."
)

// Decision is the routed outcome together with the side effects it calls for.
type Decision struct {
	Outcome     Outcome `json:"outcome"`
	Persist     bool    `json:"persist"`
	Notify      bool    `json:"notify"`
	Instruction string  `json:"instruction,omitempty"`
}

// Router maps a hybrid result to a Decision. It performs no side effects.
type Router struct {
	minLength int
}

// NewRouter creates a Router. A non-positive minLength uses DefaultMinMessageLength.
func NewRouter(minLength int) *Router {
	if minLength <= 0 {
		minLength = DefaultMinMessageLength
	}
	return &Router{minLength: minLength}
}

// Route applies the rules in order: non-questions are ignored, vague or
// short questions are rejected, everything else is accepted.
func (r *Router) Route(msg Message, hybrid HybridResult) Decision {
	if hybrid.Label != LabelDuvida {
		return Decision{Outcome: OutcomeIgnored}
	}

	if hybrid.Local.Analysis.Vague || msg.Length() < r.minLength {
		return Decision{
			Outcome:     OutcomeRejectedVague,
			Instruction: VagueInstruction,
		}
	}

	return Decision{
		Outcome: OutcomeAccepted,
		Persist: true,
		Notify:  true,
	}
}
