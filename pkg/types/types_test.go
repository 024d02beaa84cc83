package types

import "testing"

func TestRenderIR(t *testing.T) {
	cases := []struct {
		typ  *Type
		want string
	}{
		{TInt, "i32"},
		{TBool, "i32"},
		{NewPointer(TInt), "*i32"},
		{NewArray(TInt, 3), "[i32, 3]"},
		{NewPointer(NewArray(TInt, 4)), "*[i32, 4]"},
	}
	for _, c := range cases {
		if got := c.typ.RenderIR(); got != c.want {
			t.Errorf("RenderIR() = %q, want %q", got, c.want)
		}
	}
}

func TestSizeBytes(t *testing.T) {
	cases := []struct {
		typ  *Type
		want int
	}{
		{TInt, 4},
		{TVoid, 0},
		{NewPointer(TInt), 4},
		{NewArray(TInt, 5), 20},
		{NewArray(NewArray(TInt, 2), 3), 24},
	}
	for _, c := range cases {
		if got := c.typ.SizeBytes(); got != c.want {
			t.Errorf("SizeBytes() = %d, want %d", got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !NewPointer(TInt).Equal(NewPointer(TInt)) {
		t.Error("expected *i32 to equal *i32")
	}
	if NewArray(TInt, 3).Equal(NewArray(TInt, 4)) {
		t.Error("arrays of different length must not be equal")
	}
	if TInt.Equal(TBool) {
		t.Error("int and bool must not be equal despite sharing an IR rendering")
	}
}

func TestArrayOfZeroLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero-length array")
		}
	}()
	NewArray(TInt, 0)
}

func TestArrayOfVoidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for void array element")
		}
	}()
	NewArray(TVoid, 1)
}
