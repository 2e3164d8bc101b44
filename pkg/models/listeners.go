package models

// Handler is a unary callback bound to one event kind
type Handler func(Event)

// Option keys accepted by ListenersFromMap
const (
	StatusCallbackKey   = "statusCallback"
	ScanningCallbackKey = "scanningCallback"
	DataCallbackKey     = "dataCallback"
)

// Listeners is the configuration passed to RegisterListeners. Nil callbacks are left untouched.
type Listeners struct {
	StatusCallback   Handler
	ScanningCallback Handler
	DataCallback     Handler
}

// ForKind returns the callback configured for the given kind (nil if none)
func (l Listeners) ForKind(kind EventKind) Handler {
	switch kind {
	case Status:
		return l.StatusCallback
	case Scanning:
		return l.ScanningCallback
	case Data:
		return l.DataCallback
	}
	return nil
}

// ListenersFromMap builds Listeners from loosely typed options. Unrecognized keys and values
// that are not callbacks are ignored.
func ListenersFromMap(options map[string]interface{}) Listeners {
	l := Listeners{}
	for key, val := range options {
		h := asHandler(val)
		if h == nil {
			continue
		}
		switch key {
		case StatusCallbackKey:
			l.StatusCallback = h
		case ScanningCallbackKey:
			l.ScanningCallback = h
		case DataCallbackKey:
			l.DataCallback = h
		}
	}
	return l
}

func asHandler(val interface{}) Handler {
	switch fn := val.(type) {
	case Handler:
		return fn
	case func(Event):
		return fn
	}
	return nil
}
