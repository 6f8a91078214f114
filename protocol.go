package vaultbak

import "fmt"

// EnvelopeState is a stage in the envelope lifecycle: the client produces
// and signs an envelope, the storage service holds it opaquely, and on the
// way back the client verifies before it decrypts.
type EnvelopeState int

const (
	// StateCreated: the client holds plaintext and key and has produced an
	// envelope.
	StateCreated EnvelopeState = iota
	// StateSigned: the device signature over ciphertext||nonce||authTag is
	// attached.
	StateSigned
	// StateStored: the storage service holds the envelope opaquely.
	StateStored
	// StateRetrieved: the service returned the opaque fields; nothing about
	// them is trusted yet.
	StateRetrieved
	// StateVerified: signature and version checked, plaintext recovered.
	// Terminal success.
	StateVerified
	// StateSignatureInvalid: the signature did not verify; the envelope was
	// rejected without decryption. Terminal failure.
	StateSignatureInvalid
	// StateRollbackDetected: the retrieved version regressed below the
	// client's watermark. Terminal failure; resolution is the caller's call.
	StateRollbackDetected
)

// String implements fmt.Stringer.
func (s EnvelopeState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSigned:
		return "signed"
	case StateStored:
		return "stored"
	case StateRetrieved:
		return "retrieved"
	case StateVerified:
		return "verified"
	case StateSignatureInvalid:
		return "signature-invalid"
	case StateRollbackDetected:
		return "rollback-detected"
	default:
		return fmt.Sprintf("EnvelopeState(%d)", int(s))
	}
}

// Terminal reports whether the lifecycle ends in this state.
func (s EnvelopeState) Terminal() bool {
	switch s {
	case StateVerified, StateSignatureInvalid, StateRollbackDetected:
		return true
	default:
		return false
	}
}

// legal lifecycle edges.
var envelopeTransitions = map[EnvelopeState][]EnvelopeState{
	StateCreated:   {StateSigned},
	StateSigned:    {StateStored},
	StateStored:    {StateRetrieved, StateSignatureInvalid, StateRollbackDetected},
	StateRetrieved: {StateVerified, StateSignatureInvalid, StateRollbackDetected},
}

// Lifecycle tracks one envelope through the protocol, rejecting transitions
// the protocol does not define.
type Lifecycle struct {
	state EnvelopeState
}

// NewLifecycle starts a lifecycle at StateCreated.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateCreated}
}

// ResumeLifecycle starts a lifecycle at an arbitrary state, for tracking an
// envelope that already exists (for example one just retrieved).
func ResumeLifecycle(state EnvelopeState) *Lifecycle {
	return &Lifecycle{state: state}
}

// State returns the current state.
func (l *Lifecycle) State() EnvelopeState {
	return l.state
}

// Transition advances to the next state, or fails if the protocol defines no
// such edge.
func (l *Lifecycle) Transition(to EnvelopeState) error {
	for _, next := range envelopeTransitions[l.state] {
		if next == to {
			l.state = to
			return nil
		}
	}
	return fmt.Errorf("vaultbak: illegal envelope transition %s -> %s", l.state, to)
}
