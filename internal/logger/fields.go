package logger

import (
	"log/slog"
)

// Standard field keys for structured logging, shared by routerd (nexus,
// zebra, ospf workers) and rezesh (the shell). Use these keys consistently
// across log statements for log aggregation and querying.
const (
	// Correlation
	KeyTraceID = "trace_id" // UDS request/response correlation id

	// Component identity
	KeyComponent = "component" // nexus, zebra, ospf, shell, ...
	KeyWorker    = "worker"    // protocol worker name (Zebra, Ospf, ...)
	KeyMode      = "cli_mode"  // current CLI mode name

	// MDS / request dispatch
	KeyMethod = "method" // GET/POST/PUT/DELETE/PATCH
	KeyPath   = "path"   // MDS path

	// Routing data
	KeyPrefix    = "prefix"
	KeyNexthop   = "nexthop"
	KeyIfname    = "ifname"
	KeyIfindex   = "ifindex"
	KeyDistance  = "distance"
	KeyProtoType = "proto_type"

	// OSPF
	KeyIsmState = "ism_state"
	KeyIsmEvent = "ism_event"
	KeyLsaType  = "lsa_type"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyToken      = "token"
	KeyAttempt    = "attempt"
)

// TraceID returns a slog.Attr for the UDS correlation id.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// Component returns a slog.Attr for the emitting component.
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// Worker returns a slog.Attr for a protocol worker name.
func Worker(name string) slog.Attr { return slog.String(KeyWorker, name) }

// Mode returns a slog.Attr for the current CLI mode.
func Mode(name string) slog.Attr { return slog.String(KeyMode, name) }

// Method returns a slog.Attr for an MDS dispatch method.
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }

// Path returns a slog.Attr for an MDS path.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Prefix returns a slog.Attr for a routing prefix in CIDR form.
func Prefix(p string) slog.Attr { return slog.String(KeyPrefix, p) }

// Nexthop returns a slog.Attr for a nexthop address or interface name.
func Nexthop(n string) slog.Attr { return slog.String(KeyNexthop, n) }

// Ifname returns a slog.Attr for an interface name.
func Ifname(name string) slog.Attr { return slog.String(KeyIfname, name) }

// Ifindex returns a slog.Attr for an interface index.
func Ifindex(idx int) slog.Attr { return slog.Int(KeyIfindex, idx) }

// Distance returns a slog.Attr for a RIB administrative distance.
func Distance(d uint8) slog.Attr { return slog.Int(KeyDistance, int(d)) }

// ProtoType returns a slog.Attr for a protocol type name.
func ProtoType(name string) slog.Attr { return slog.String(KeyProtoType, name) }

// IsmState returns a slog.Attr for an OSPF interface state machine state.
func IsmState(s string) slog.Attr { return slog.String(KeyIsmState, s) }

// IsmEvent returns a slog.Attr for an OSPF interface state machine event.
func IsmEvent(e string) slog.Attr { return slog.String(KeyIsmEvent, e) }

// LsaType returns a slog.Attr for an OSPF LSA type.
func LsaType(t string) slog.Attr { return slog.String(KeyLsaType, t) }

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a no-op attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Token returns a slog.Attr for a timer registration token.
func Token(t uint32) slog.Attr { return slog.Uint64(KeyToken, uint64(t)) }

// Attempt returns a slog.Attr for a retry attempt number.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }
