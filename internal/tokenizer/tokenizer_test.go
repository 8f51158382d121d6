package tokenizer

import "testing"

func TestNewCounterDefault(t *testing.T) {
	counter, model, counterError := NewCounter("gpt-4o")
	if counterError != nil {
		t.Fatalf("NewCounter error: %v", counterError)
	}
	if counter == nil {
		t.Fatalf("expected non-nil counter")
	}
	if model != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %q", model)
	}
	tokens, countError := counter.CountString("hello world")
	if countError != nil {
		t.Fatalf("CountString error: %v", countError)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}

func TestCountStringEmptyInput(t *testing.T) {
	counter, _, counterError := NewCounter("")
	if counterError != nil {
		t.Fatalf("NewCounter error: %v", counterError)
	}
	tokens, countError := counter.CountString("")
	if countError != nil {
		t.Fatalf("CountString error: %v", countError)
	}
	if tokens != 0 {
		t.Fatalf("expected zero tokens for empty input, got %d", tokens)
	}
}
