package model

import "testing"

func TestReminderPayloadWireFormat(t *testing.T) {
	p := ReminderPayload{
		TaskID:  "task-1",
		UserID:  "user-1",
		Title:   "water plants",
		DueDate: "2024-01-10",
	}

	data, err := p.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// The field names are a contract with already-delivered
	// notifications, not an implementation detail.
	want := `{"taskId":"task-1","userId":"user-1","title":"water plants","dueDate":"2024-01-10"}`
	if data != want {
		t.Errorf("encoded payload = %s, want %s", data, want)
	}

	back, err := DecodeReminderPayload(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != p {
		t.Errorf("round-trip = %+v, want %+v", back, p)
	}
}

func TestPriorityRanks(t *testing.T) {
	cases := []struct {
		priority Priority
		rank     int
	}{
		{PriorityHigh, 0},
		{PriorityMedium, 1},
		{PriorityLow, 2},
		{Priority("urgent"), 99},
		{Priority(""), 99},
	}
	for _, c := range cases {
		if got := c.priority.Rank(); got != c.rank {
			t.Errorf("Rank(%q) = %d, want %d", c.priority, got, c.rank)
		}
	}
}
