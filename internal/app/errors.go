package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotAssigned     = errors.New("judge not assigned to room")
	ErrUnknownModality = errors.New("unknown modality")
)
