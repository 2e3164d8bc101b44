package models

import (
	"testing"

	"gotest.tools/assert"
)

func TestListenersFromMap(t *testing.T) {
	var got []EventKind
	record := func(e Event) { got = append(got, e.Kind()) }
	l := ListenersFromMap(map[string]interface{}{
		StatusCallbackKey:    record,
		DataCallbackKey:      Handler(record),
		"connectionCallback": record,
		"scanningCallback2":  record,
	})
	assert.Assert(t, l.StatusCallback != nil)
	assert.Assert(t, l.ScanningCallback == nil)
	assert.Assert(t, l.DataCallback != nil)
	l.ForKind(Data)(&DataEvent{})
	assert.DeepEqual(t, got, []EventKind{Data})
}

func TestListenersFromMapIgnoresNonCallbacks(t *testing.T) {
	l := ListenersFromMap(map[string]interface{}{
		StatusCallbackKey:   "not a function",
		ScanningCallbackKey: func(string) {},
		DataCallbackKey:     nil,
	})
	for _, kind := range EventKinds {
		assert.Assert(t, l.ForKind(kind) == nil)
	}
}
