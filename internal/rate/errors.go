package rate

import "errors"

// ErrCoolingDown indicates refresh attempts are suppressed until the
// cooldown window expires.
var ErrCoolingDown = errors.New("rate: refresh cooling down")
