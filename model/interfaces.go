package model

// Recorder appends moderation actions to the ledger.
type Recorder interface {
	Record(action ModAction) error
}
