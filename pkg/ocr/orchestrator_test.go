package ocr

import (
	"context"
	"errors"
	"image"
	"testing"
)

type fakeEngine struct {
	name      string
	available bool
	results   map[Mode]*Result
	errs      map[Mode]error
	calls     []Mode
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Recognize(_ context.Context, _ image.Image, mode Mode) (*Result, error) {
	f.calls = append(f.calls, mode)
	if err, ok := f.errs[mode]; ok {
		return nil, err
	}
	if res, ok := f.results[mode]; ok {
		return res, nil
	}
	return nil, ErrUnsupportedMode
}

func page() image.Image { return image.NewNRGBA(image.Rect(0, 0, 400, 300)) }

func resultOf(tokens ...Token) *Result {
	return assemble(tokens, 10)
}

func TestOrchestratorAcceptsConfidentPrimary(t *testing.T) {
	primary := &fakeEngine{name: "primary", available: true, results: map[Mode]*Result{
		ModeFullPage: resultOf(tok("APPLES", 0.9, 10, 10, 60, 12)),
	}}
	fallback := &fakeEngine{name: "fallback", available: true, results: map[Mode]*Result{}}
	res, err := New(primary, fallback).Recognize(context.Background(), page())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if res.Text != "APPLES" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	for _, m := range fallback.calls {
		if m == ModeFullPage {
			t.Fatal("fallback full-page pass should not run when primary accepted")
		}
	}
}

func TestOrchestratorFallsBackWhenPrimaryUnavailable(t *testing.T) {
	primary := &fakeEngine{name: "primary", available: false}
	fallback := &fakeEngine{name: "fallback", available: true, results: map[Mode]*Result{
		ModeFullPage: resultOf(tok("BREAD", 0.7, 10, 10, 50, 12)),
	}}
	res, err := New(primary, fallback).Recognize(context.Background(), page())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if res.Text != "BREAD" {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestOrchestratorKeepsBetterOfPrimaryAndFallback(t *testing.T) {
	primary := &fakeEngine{name: "primary", available: true, results: map[Mode]*Result{
		ModeFullPage: resultOf(tok("FUZZY", 0.5, 10, 10, 50, 12)),
	}}
	fallback := &fakeEngine{name: "fallback", available: true, results: map[Mode]*Result{
		ModeFullPage: resultOf(tok("CLEAR", 0.7, 10, 10, 50, 12)),
	}}
	res, err := New(primary, fallback).Recognize(context.Background(), page())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if res.Text != "CLEAR" {
		t.Fatalf("expected fallback to win, got %q", res.Text)
	}
}

func TestOrchestratorMultiColumnRerun(t *testing.T) {
	var wide []Token
	for i := 0; i < 4; i++ {
		y := 10 + i*30
		wide = append(wide, tok("item", 0.6, 5, y, 20, 12), tok("9.99", 0.6, 350, y, 20, 12))
	}
	colTokens := make([]Token, len(wide))
	copy(colTokens, wide)
	for i := range colTokens {
		colTokens[i].Confidence = 0.8
	}
	fallback := &fakeEngine{name: "fallback", available: true, results: map[Mode]*Result{
		ModeFullPage:     resultOf(wide...),
		ModeSingleColumn: resultOf(colTokens...),
		ModeDigits:       resultOf(),
	}}
	res, err := New(nil, fallback).Recognize(context.Background(), page())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	sawColumn := false
	for _, m := range fallback.calls {
		if m == ModeSingleColumn {
			sawColumn = true
		}
	}
	if !sawColumn {
		t.Fatal("multi-column layout did not trigger single-column pass")
	}
	if res.MeanConfidence < 0.75 {
		t.Fatalf("higher-confidence column pass not kept (mean %.2f)", res.MeanConfidence)
	}
}

func TestOrchestratorPriceRegionRefinement(t *testing.T) {
	base := []Token{
		tok("MILK", 0.8, 10, 10, 60, 12),
		tok("12,9S", 0.4, 330, 10, 50, 12), // not price-shaped; stays as-is
		tok("12,99", 0.4, 330, 40, 50, 12),
	}
	fallback := &fakeEngine{name: "fallback", available: true, results: map[Mode]*Result{
		ModeFullPage: resultOf(base...),
		ModeDigits:   resultOf(tok("12.99", 0.95, 2, 2, 48, 10)),
	}}
	res, err := New(nil, fallback).Recognize(context.Background(), page())
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	found := false
	for _, tk := range res.Tokens {
		if tk.Text == "12.99" && tk.Confidence > 0.9 {
			found = true
		}
		if tk.Text == "12,99" {
			t.Fatal("low-confidence price token should have been replaced")
		}
	}
	if !found {
		t.Fatal("refined price token missing from merged result")
	}
}

func TestOrchestratorAllEnginesFail(t *testing.T) {
	primary := &fakeEngine{name: "primary", available: true, errs: map[Mode]error{ModeFullPage: errors.New("boom")}}
	fallback := &fakeEngine{name: "fallback", available: true, errs: map[Mode]error{ModeFullPage: errors.New("boom")}}
	_, err := New(primary, fallback).Recognize(context.Background(), page())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOrchestratorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fallback := &fakeEngine{name: "fallback", available: true, errs: map[Mode]error{ModeFullPage: context.Canceled}}
	_, err := New(nil, fallback).Recognize(ctx, page())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
