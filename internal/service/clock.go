package service

import "time"

// Clock supplies the authoritative server time. Timing decisions never
// trust a client timestamp; tests swap the clock to control "now".
type Clock func() time.Time
