package script

import "testing"

func TestSimpleTranslate(t *testing.T) {
	src := `
fn translate(input) {
	if input == "hello" {
		return ["hello", "", "world", true];
	}
	return ["", "", "", false];
}
`
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	res, err := prog.Translate("hello", 1000)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Code != "hello" || len(res.Texts) != 1 || res.Texts[0] != "world" || !res.AutoCommit {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDateFormatScript(t *testing.T) {
	src := `
fn isDigit(c) {
	return c == "0" || c == "1" || c == "2" || c == "3" || c == "4" || c == "5" || c == "6" || c == "7" || c == "8" || c == "9";
}

fn translate(input) {
	if len(input) != 10 {
		return ["", "", "", false];
	}
	if substr(input, 2, 3) != "/" || substr(input, 5, 6) != "/" {
		return ["", "", "", false];
	}
	let day = substr(input, 0, 2);
	let month = substr(input, 3, 5);
	let year = substr(input, 6, 10);
	return [input, "", concat(year, "-", month, "-", day), true];
}
`
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	res, err := prog.Translate("09/02/2024", 1000)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Texts[0] != "2024-02-09" || !res.AutoCommit {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestBudgetExceeded(t *testing.T) {
	src := `
fn translate(input) {
	let total = 0;
	for i in range(0, 100000) {
		total = total + i;
	}
	return [input, "", toString(total), false];
}
`
	prog, err := Compile(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = prog.Translate("x", 100)
	if err != ErrBudgetExceeded {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestMissingTranslateFn(t *testing.T) {
	_, err := Compile(`fn helper(x) { return x; }`)
	if err == nil {
		t.Fatalf("expected error for missing translate()")
	}
}
