package job

import "testing"

func TestNewBulkExport(t *testing.T) {
	j, err := NewBulkExport("Products", "Product", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Kind != KindBulkExport || j.Offset != 200 {
		t.Errorf("unexpected job: %+v", j)
	}
	if j.ID == "" {
		t.Error("expected generated id")
	}
	if err := j.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewBulkExport_Invalid(t *testing.T) {
	tests := []struct {
		name, index, class string
		offset             int
	}{
		{"no index", "", "Product", 0},
		{"no class", "Products", "", 0},
		{"negative offset", "Products", "Product", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBulkExport(tt.index, tt.class, tt.offset); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewExportAndDelete(t *testing.T) {
	e, err := NewExport("Products", "Product", "42")
	if err != nil {
		t.Fatalf("NewExport: %v", err)
	}
	if e.Kind != KindExport || e.RecordID != "42" {
		t.Errorf("unexpected export job: %+v", e)
	}

	d, err := NewDelete("Products", "Product", "42")
	if err != nil {
		t.Fatalf("NewDelete: %v", err)
	}
	if d.Kind != KindDelete {
		t.Errorf("unexpected delete job: %+v", d)
	}

	if _, err := NewDelete("Products", "Product", ""); err == nil {
		t.Error("expected error for empty record id")
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	j := Job{Kind: "reindex", Index: "a", Class: "b"}
	if err := j.Validate(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
