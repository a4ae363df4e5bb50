package record

import "testing"

func TestRecord_ID(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{"id": "a1"}, "a1"},
		{Record{"id": int64(42)}, "42"},
		{Record{"id": nil}, ""},
		{Record{"title": "x"}, ""},
	}
	for _, tt := range tests {
		if got := tt.rec.ID(); got != tt.want {
			t.Errorf("ID(%v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}

func TestRecord_Document(t *testing.T) {
	rec := Record{"id": int64(7), "price": 2.0}
	doc := rec.Document()

	if doc["id"] != "7" {
		t.Errorf("id = %#v, want \"7\"", doc["id"])
	}
	if doc["price"] != 2.0 {
		t.Errorf("price = %#v", doc["price"])
	}
	if rec["id"] != int64(7) {
		t.Error("Document must not modify the record")
	}
}
