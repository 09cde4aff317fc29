package notify

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeSet, "set"},
		{ChangeReload, "reload"},
		{ChangeError, "error"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var received atomic.Bool
	sub := n.Subscribe(func(change Change) {
		received.Store(true)
	})

	n.Notify(Change{Keys: []string{"indent"}, Type: ChangeSet})
	if !received.Load() {
		t.Error("observer did not receive notification")
	}

	sub.Unsubscribe()
	received.Store(false)
	n.Notify(Change{Type: ChangeReload})
	if received.Load() {
		t.Error("unsubscribed observer received notification")
	}
}

func TestNotifier_SubscribeKey(t *testing.T) {
	n := New()
	defer n.Close()

	var indent, glyph atomic.Int32
	n.SubscribeKey("indent", func(Change) { indent.Add(1) })
	n.SubscribeKey("pending_task", func(Change) { glyph.Add(1) })

	n.Notify(Change{Keys: []string{"indent", "date_format"}, Type: ChangeSet})
	n.Notify(Change{Type: ChangeReload})

	if indent.Load() != 1 {
		t.Errorf("indent observer called %d times, want 1", indent.Load())
	}
	if glyph.Load() != 0 {
		t.Errorf("pending_task observer called %d times, want 0", glyph.Load())
	}
}

func TestNotifier_Async(t *testing.T) {
	n := New(WithAsync(4))

	got := make(chan Change, 1)
	n.Subscribe(func(c Change) { got <- c })
	n.Notify(Change{Keys: []string{"new_on_top"}, Source: "test"})

	select {
	case c := <-got:
		if !c.Has("new_on_top") || c.Source != "test" {
			t.Errorf("unexpected change %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("async notification not delivered")
	}

	n.Close()
	n.Close()
}
