package translator

import "testing"

func TestExactMatch(t *testing.T) {
	tr := New(Options{})
	tr.Insert("hello", []string{"ሰላም"}, false)

	preds := tr.Translate("hello")
	if len(preds) != 1 || preds[0].Code != "hello" || preds[0].Texts[0] != "ሰላም" {
		t.Fatalf("unexpected predicates: %+v", preds)
	}
}

func TestFuzzyMatch(t *testing.T) {
	tr := New(Options{FuzzyThreshold: 0.7})
	tr.Insert("hello", []string{"ሰላም"}, false)

	preds := tr.Translate("helo")
	if len(preds) != 1 || preds[0].Code != "hello" {
		t.Fatalf("expected a fuzzy match on 'hello', got %+v", preds)
	}
}

func TestPrefixCompletion(t *testing.T) {
	tr := New(Options{FuzzyThreshold: 2}) // disable fuzzy so only prefix results show
	tr.Insert("salut!", []string{"hello!", "hi!"}, false)
	tr.Insert("salade", []string{"vegetable"}, false)

	preds := tr.Translate("sal")
	if len(preds) != 2 {
		t.Fatalf("expected 2 prefix completions, got %+v", preds)
	}
	if preds[0].Remaining != "ut!" || preds[1].Remaining != "ade" {
		t.Fatalf("expected completions ordered by ascending remaining length, got %+v", preds)
	}
}

func TestExactBeatsPrefixAndFuzzy(t *testing.T) {
	tr := New(Options{FuzzyThreshold: 0.5})
	tr.Insert("sal", []string{"exact"}, false)
	tr.Insert("salut", []string{"other"}, false)

	preds := tr.Translate("sal")
	if len(preds) == 0 || preds[0].Code != "sal" || preds[0].Texts[0] != "exact" {
		t.Fatalf("expected exact match first, got %+v", preds)
	}
}

func TestScriptedPredicate(t *testing.T) {
	tr := New(Options{})
	err := tr.RegisterScript("dates", `
fn translate(input) {
	if input == "09/02/2024" {
		return [input, "", "2024-02-09", true];
	}
	return ["", "", "", false];
}
`)
	if err != nil {
		t.Fatalf("register script: %v", err)
	}
	preds := tr.Translate("09/02/2024")
	if len(preds) != 1 || !preds[0].AutoCommit || preds[0].Texts[0] != "2024-02-09" {
		t.Fatalf("unexpected script predicate result: %+v", preds)
	}
}

func TestPageSizeTruncation(t *testing.T) {
	tr := New(Options{PageSize: 1, FuzzyThreshold: 2})
	tr.Insert("salut!", []string{"a"}, false)
	tr.Insert("salade", []string{"b"}, false)

	preds := tr.Translate("sal")
	if len(preds) != 1 {
		t.Fatalf("expected truncation to page size 1, got %d predicates", len(preds))
	}
}

func TestDedupeByCodeRemainingText(t *testing.T) {
	preds := dedupe([]Predicate{
		{Code: "a", Remaining: "", Texts: []string{"x"}},
		{Code: "a", Remaining: "", Texts: []string{"x"}},
		{Code: "a", Remaining: "", Texts: []string{"y"}},
	})
	if len(preds) != 2 {
		t.Fatalf("expected 2 deduplicated predicates, got %d", len(preds))
	}
}
