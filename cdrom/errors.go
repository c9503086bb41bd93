package cdrom

import (
	"fmt"
	"log"
)

// DeviceError is the canonical "guest error" reason code delivered as the
// second byte of an INT5 response (spec.md §7 kind 1). It is never
// returned as a Go error — it only ever appears on the wire.
type DeviceError uint8

const (
	// ErrNoDisc covers "no disc"/"door open" guest errors.
	ErrNoDisc DeviceError = 0x80
	// ErrBadParameter covers "bad track"/"bad parameter" guest errors.
	ErrBadParameter DeviceError = 0x10
)

// warnf logs a host-programming-mistake or media-failure diagnostic at
// warning level (spec.md §7 kinds 2 and 3). Never fatal.
func warnf(format string, args ...interface{}) {
	log.Printf("cdrom: warning: "+format, args...)
}

// debugf logs a low-priority diagnostic, matching the teacher's use of
// Log_DebugPrintf/Log_DevPrintf for normal command/sector tracing.
func debugf(format string, args ...interface{}) {
	log.Printf("cdrom: "+format, args...)
}

// panicf is a formatted panic for implementation invariants (spec.md §7
// kind 4): an unknown register or unknown primary opcode. These indicate
// a mis-modeled port and must never be silently tolerated.
func panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf("cdrom: "+format, args...))
}
