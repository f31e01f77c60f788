package splitter

import (
	"reflect"
	"testing"
)

func words(s string) []string {
	ws := Split(s)
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Text
	}
	return out
}

func TestCamelCase(t *testing.T) {
	got := words("calculateUserAge")
	want := []string{"calculate", "User", "Age"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCamelCaseUnderscore(t *testing.T) {
	ws := Split("calculateUser_Age____word__")
	want := []Word{
		{Text: "calculate", StartByte: 0},
		{Text: "User", StartByte: 9},
		{Text: "Age", StartByte: 14},
		{Text: "word", StartByte: 21},
	}
	assertWords(t, ws, want)
}

func TestCamelCasePeriod(t *testing.T) {
	ws := Split("calculateUser.Age.._.word._")
	want := []Word{
		{Text: "calculate", StartByte: 0},
		{Text: "User", StartByte: 9},
		{Text: "Age", StartByte: 14},
		{Text: "word", StartByte: 21},
	}
	assertWords(t, ws, want)
}

func TestCamelCaseColon(t *testing.T) {
	ws := Split("calculateUser:Age..:.word.:")
	want := []Word{
		{Text: "calculate", StartByte: 0},
		{Text: "User", StartByte: 9},
		{Text: "Age", StartByte: 14},
		{Text: "word", StartByte: 21},
	}
	assertWords(t, ws, want)
}

func TestComplexCamelCase(t *testing.T) {
	got := words("XMLHttpRequest")
	want := []string{"XML", "Http", "Request"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNumber(t *testing.T) {
	got := words("userAge10")
	want := []string{"user", "Age", "10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestUppercase(t *testing.T) {
	got := words("EXAMPLE")
	want := []string{"EXAMPLE"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestUppercaseFirst(t *testing.T) {
	got := words("Example")
	want := []string{"Example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestUnicodePassthrough(t *testing.T) {
	got := words("こんにちは")
	want := []string{"こんにちは"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestXMLHttpRequestByteOffsets(t *testing.T) {
	ws := Split("XMLHttpRequest")
	want := []Word{
		{Text: "XML", StartByte: 0},
		{Text: "Http", StartByte: 3},
		{Text: "Request", StartByte: 7},
	}
	assertWords(t, ws, want)
}

func TestEmpty(t *testing.T) {
	if got := Split(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMinLengthFilter(t *testing.T) {
	ws := Split("myVarible")
	ws = FilterMinLength(ws, 3)
	got := make([]string, len(ws))
	for i, w := range ws {
		got[i] = w.Text
	}
	want := []string{"Varible"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func assertWords(t *testing.T, got []Word, want []Word) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d words %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].Text != want[i].Text || got[i].StartByte != want[i].StartByte {
			t.Fatalf("word %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}
