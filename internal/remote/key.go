package remote

import "github.com/iasoon/planetwars-matchrunner/pkg/randid"

// NewPlayerKey generates a random 32-character alphanumeric player key.
func NewPlayerKey() PlayerKey {
	return PlayerKey(randid.PlayerKey())
}
