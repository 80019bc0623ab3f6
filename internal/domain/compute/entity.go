package compute

// State of the remote instance as reported by the cloud API.
type State struct {
	InstanceID    string `json:"instance_id"`
	PreviousState string `json:"previous_state,omitempty"`
	CurrentState  string `json:"current_state,omitempty"`
}
