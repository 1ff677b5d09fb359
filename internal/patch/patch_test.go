package patch

import (
	"reflect"
	"testing"

	"taxiline/internal/apperrors"
)

type testEntity struct {
	Name        string
	Cost        float64
	Active      bool
	Subscribers []string
}

func (e *testEntity) fields() Registry {
	return Registry{
		"name":        String(&e.Name),
		"cost":        Float64(&e.Cost),
		"active":      Bool(&e.Active),
		"subscribers": StringSlice(&e.Subscribers),
	}
}

func TestApplyInOrder(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpSet, Path: "name", Value: "first"},
		{Op: OpSet, Path: "name", Value: "second"},
		{Op: OpSet, Path: "cost", Value: 12.5},
	}, e.fields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.Name != "second" {
		t.Errorf("name = %q, last operation should win", e.Name)
	}
	if e.Cost != 12.5 {
		t.Errorf("cost = %v, want 12.5", e.Cost)
	}
}

func TestApplySlashPrefixedPaths(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpReplace, Path: "/name", Value: "slashed"},
	}, e.fields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Name != "slashed" {
		t.Errorf("name = %q, want slashed", e.Name)
	}
}

func TestApplyStripsIdentityEdits(t *testing.T) {
	e := &testEntity{Name: "kept"}

	// Identity edits are dropped silently, even though no accessor exists.
	err := Apply([]Operation{
		{Op: OpSet, Path: "_id", Value: "507f1f77bcf86cd799439011"},
		{Op: OpSet, Path: "/id", Value: "507f1f77bcf86cd799439011"},
	}, e.fields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Name != "kept" {
		t.Errorf("entity mutated by identity edit")
	}
}

func TestApplyUnknownField(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpSet, Path: "is_settled", Value: true},
	}, e.fields())
	if err == nil {
		t.Fatal("expected error for unregistered field")
	}
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %T", err)
	}
	if msg := apperrors.ValidationFields(err)["is_settled"]; msg != "field cannot be patched" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestApplyUnsupportedOp(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: "move", Path: "name", Value: "x"},
	}, e.fields())
	if err == nil {
		t.Fatal("expected error for unsupported op")
	}
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %T", err)
	}
}

func TestApplyAbortsOnFirstInvalid(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpSet, Path: "name", Value: "applied"},
		{Op: OpSet, Path: "cost", Value: "not a number"},
		{Op: OpSet, Path: "active", Value: true},
	}, e.fields())
	if err == nil {
		t.Fatal("expected error")
	}

	// Operations after the failing one never run.
	if e.Active {
		t.Error("operation after the failing one was applied")
	}
}

func TestApplyRemove(t *testing.T) {
	e := &testEntity{
		Name:        "gone",
		Cost:        9,
		Active:      true,
		Subscribers: []string{"a", "b"},
	}

	err := Apply([]Operation{
		{Op: OpRemove, Path: "name"},
		{Op: OpRemove, Path: "cost"},
		{Op: OpRemove, Path: "active"},
		{Op: OpRemove, Path: "subscribers"},
	}, e.fields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.Name != "" || e.Cost != 0 || e.Active || e.Subscribers != nil {
		t.Errorf("remove left residue: %+v", e)
	}
}

func TestFloat64AcceptsIntegers(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpSet, Path: "cost", Value: 7},
	}, e.fields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Cost != 7 {
		t.Errorf("cost = %v, want 7", e.Cost)
	}
}

func TestStringSliceRejectsMixedElements(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpSet, Path: "subscribers", Value: []interface{}{"ok", 5}},
	}, e.fields())
	if err == nil {
		t.Fatal("expected error for non-string element")
	}
}

func TestStringSliceSet(t *testing.T) {
	e := &testEntity{}

	err := Apply([]Operation{
		{Op: OpSet, Path: "subscribers", Value: []interface{}{"dev-1", "dev-2"}},
	}, e.fields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(e.Subscribers, []string{"dev-1", "dev-2"}) {
		t.Errorf("subscribers = %v", e.Subscribers)
	}
}

func TestTypeMismatches(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
	}{
		{"string field gets number", Operation{Op: OpSet, Path: "name", Value: 3.0}},
		{"bool field gets string", Operation{Op: OpSet, Path: "active", Value: "true"}},
		{"number field gets bool", Operation{Op: OpSet, Path: "cost", Value: true}},
		{"slice field gets string", Operation{Op: OpSet, Path: "subscribers", Value: "a,b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &testEntity{}
			if err := Apply([]Operation{tt.op}, e.fields()); err == nil {
				t.Error("expected type mismatch error")
			}
		})
	}
}
