package wifi

import "errors"

var (
	// ErrNotProvisioned is returned by Load before any credentials are saved.
	ErrNotProvisioned = errors.New("wifi: not provisioned")

	// ErrSealedDataCorrupt is returned when a stored password fails to open.
	ErrSealedDataCorrupt = errors.New("wifi: sealed password corrupt or key changed")
)
