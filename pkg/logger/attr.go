package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// IdentityID records the identity being authenticated under the key
// "identity_id". If id is nil, it returns an empty Attr.
func IdentityID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("identity_id", id)
}

// Method records a second-factor method name under the key "method".
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Channel records a delivery channel under the key "channel".
func Channel(channel string) slog.Attr {
	return slog.String("channel", channel)
}

// Modality records a biometric modality under the key "modality".
func Modality(modality string) slog.Attr {
	return slog.String("modality", modality)
}

// Reason records a failure classification under the key "reason".
func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

// Count records a quantity under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}
