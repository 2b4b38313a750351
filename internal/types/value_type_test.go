package types

import "testing"

func TestSizeOfScalars(t *testing.T) {
	cases := []struct {
		name string
		t    ValueType
		want int
	}{
		{"bool", NewBool(), 1},
		{"uint", NewUint(), 8},
		{"int", NewInt(), 8},
		{"float", NewFloat(), 8},
		{"autoid", NewAutoId(), 8},
		{"str(0) off-page", NewStr(0), 10},
		{"str(27)", NewStr(27), 27},
		{"str(300) clamps to 256", NewStr(300), 256},
		{"nullable(str(27))", NewNullable(NewStr(27)), 28},
		{"vector(4, nullable(str(27)))", NewVector(4, NewNullable(NewStr(27))), 112},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := SizeOf(c.t)
			if err != nil {
				t.Fatalf("SizeOf(%v) returned error: %v", c.t, err)
			}
			if got != c.want {
				t.Errorf("SizeOf(%v) = %d, want %d", c.t, got, c.want)
			}
		})
	}
}

func TestSizeOfUnknownFails(t *testing.T) {
	if _, err := SizeOf(ValueType{Kind: Unknown}); err == nil {
		t.Fatal("SizeOf(Unknown) should fail")
	}
}

func TestTupleSizeOf(t *testing.T) {
	tup := NewTuple(
		Field{Name: "a", Type: NewBool()},
		Field{Name: "b", Type: NewUint()},
		Field{Name: "c", Type: NewVector(2, NewInt())},
	)
	got, err := tup.SizeOf()
	if err != nil {
		t.Fatalf("Tuple.SizeOf returned error: %v", err)
	}
	if want := 25; got != want {
		t.Errorf("Tuple.SizeOf() = %d, want %d", got, want)
	}
}

func TestToDDL(t *testing.T) {
	cases := []struct {
		name string
		t    ValueType
		want string
	}{
		{"bool", NewBool(), "bool"},
		{"int", NewInt(), "int"},
		{"uint", NewUint(), "unsigned int"},
		{"float", NewFloat(), "float"},
		{"str(0)", NewStr(0), "str"},
		{"str(12)", NewStr(12), "str(12)"},
		{"nullable bool", NewNullable(NewBool()), "nullable bool"},
		{"nullable int", NewNullable(NewInt()), "nullable int"},
		{"nullable str(189)", NewNullable(NewStr(189)), "nullable str(189)"},
		{"vector(3) nullable bool", NewVector(3, NewNullable(NewBool())), "vector(3) nullable bool"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ToDDL(c.t); got != c.want {
				t.Errorf("ToDDL(%v) = %q, want %q", c.t, got, c.want)
			}
		})
	}
}

func TestTupleToDDL(t *testing.T) {
	tup := NewTuple(
		Field{Name: "col_1", Type: NewInt()},
		Field{Name: "col2", Type: NewStr(0)},
	)
	want := "(col_1 int, col2 str)"
	if got := tup.ToDDL(); got != want {
		t.Errorf("Tuple.ToDDL() = %q, want %q", got, want)
	}
}

func TestTupleEqual(t *testing.T) {
	a := NewTuple(Field{Name: "x", Type: NewBool()}, Field{Name: "y", Type: NewVector(2, NewInt())})
	b := NewTuple(Field{Name: "x", Type: NewBool()}, Field{Name: "y", Type: NewVector(2, NewInt())})
	c := NewTuple(Field{Name: "x", Type: NewBool()}, Field{Name: "y", Type: NewVector(3, NewInt())})
	if !a.Equal(b) {
		t.Error("expected a to equal b")
	}
	if a.Equal(c) {
		t.Error("expected a to not equal c")
	}
}
