package domain

// Role identifies the author of a Message.
type Role string

const (
	RoleHuman      Role = "human"
	RoleAssistant  Role = "assistant"
	RoleCapability Role = "capability"
)

// CapabilityCall is a request from the decision model to run a capability.
type CapabilityCall struct {
	ID   string            `json:"call_id" mapstructure:"call_id"`
	Name string            `json:"name" mapstructure:"name"`
	Args map[string]string `json:"arguments,omitempty" mapstructure:"arguments"`
}

// Clone returns a deep copy of the call.
func (c CapabilityCall) Clone() CapabilityCall {
	out := CapabilityCall{ID: c.ID, Name: c.Name}
	if c.Args != nil {
		out.Args = make(map[string]string, len(c.Args))
		for k, v := range c.Args {
			out.Args[k] = v
		}
	}
	return out
}

// Message is one entry of the conversation log.
//
// Calls is only populated on assistant messages. CallID and Name are only set
// on capability results and correlate the result with the call that produced it.
type Message struct {
	Role    Role             `json:"role"`
	Content string           `json:"content"`
	Calls   []CapabilityCall `json:"requested_calls,omitempty"`
	CallID  string           `json:"call_id,omitempty"`
	Name    string           `json:"name,omitempty"`
}

// HumanMessage builds a message authored by the human.
func HumanMessage(text string) Message {
	return Message{Role: RoleHuman, Content: text}
}

// AssistantCall builds an assistant message requesting the given calls.
func AssistantCall(calls ...CapabilityCall) Message {
	m := Message{Role: RoleAssistant}
	for _, c := range calls {
		m.Calls = append(m.Calls, c.Clone())
	}
	return m
}

// CapabilityResult builds the result message for a call.
func CapabilityResult(call CapabilityCall, text string) Message {
	return Message{Role: RoleCapability, Content: text, CallID: call.ID, Name: call.Name}
}

// HasCalls reports whether the message is an assistant message requesting capabilities.
func (m Message) HasCalls() bool {
	return m.Role == RoleAssistant && len(m.Calls) > 0
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Calls != nil {
		out.Calls = make([]CapabilityCall, len(m.Calls))
		for i, c := range m.Calls {
			out.Calls[i] = c.Clone()
		}
	}
	return out
}

func (m Message) equal(o Message) bool {
	if m.Role != o.Role || m.Content != o.Content || m.CallID != o.CallID || m.Name != o.Name {
		return false
	}
	if len(m.Calls) != len(o.Calls) {
		return false
	}
	for i := range m.Calls {
		a, b := m.Calls[i], o.Calls[i]
		if a.ID != b.ID || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for k, v := range a.Args {
			if bv, ok := b.Args[k]; !ok || bv != v {
				return false
			}
		}
	}
	return true
}

// Log is the ordered, append-only conversation history of a session.
type Log []Message

// Append returns a new log with msgs added. The receiver is never modified.
func (l Log) Append(msgs ...Message) Log {
	out := make(Log, 0, len(l)+len(msgs))
	out = append(out, l...)
	for _, m := range msgs {
		out = append(out, m.Clone())
	}
	return out
}

// Clone returns a deep copy of the log.
func (l Log) Clone() Log {
	if l == nil {
		return nil
	}
	out := make(Log, len(l))
	for i, m := range l {
		out[i] = m.Clone()
	}
	return out
}

// HasPrefix reports whether prefix is a leading subsequence of l.
func (l Log) HasPrefix(prefix Log) bool {
	if len(prefix) > len(l) {
		return false
	}
	for i := range prefix {
		if !l[i].equal(prefix[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether both logs hold the same messages in the same order.
func (l Log) Equal(o Log) bool {
	return len(l) == len(o) && l.HasPrefix(o)
}

// LastCall returns the most recent assistant message that requested capabilities.
// Only the latest assistant message is considered: if it carries no calls, ok is false.
func (l Log) LastCall() (msg Message, ok bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Role != RoleAssistant {
			continue
		}
		if !l[i].HasCalls() {
			return Message{}, false
		}
		return l[i], true
	}
	return Message{}, false
}

// ResultFor returns the capability result correlated with callID.
func (l Log) ResultFor(callID string) (Message, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Role == RoleCapability && l[i].CallID == callID {
			return l[i], true
		}
	}
	return Message{}, false
}

// SinceLastHuman returns the messages appended after the most recent human message.
func (l Log) SinceLastHuman() Log {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Role == RoleHuman {
			return l[i+1:]
		}
	}
	return l
}
