package script_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/espalier/pkg/script"
	"github.com/aretw0/espalier/pkg/variables"
)

func newEnv(t *testing.T) *script.Env {
	t.Helper()
	store := variables.NewStore()
	for _, d := range []struct {
		ns, name string
		initial  any
	}{
		{"Quest", "accepted", false},
		{"Quest", "gold", 10},
		{"Player", "name", "Ryn"},
		{"Player", "level", 3},
	} {
		if err := store.Declare(d.ns, d.name, d.initial); err != nil {
			t.Fatalf("declare %s.%s: %v", d.ns, d.name, err)
		}
	}
	return &script.Env{Store: store, Object: "node-1", Speaker: "npc-7"}
}

func evalCondition(t *testing.T, env *script.Env, src string) bool {
	t.Helper()
	cond, err := script.CompileCondition(src)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	got, err := cond.Evaluate(context.Background(), env)
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return got
}

func TestConditionBasics(t *testing.T) {
	env := newEnv(t)

	cases := []struct {
		src  string
		want bool
	}{
		{"", true},
		{"true", true},
		{"false", false},
		{"!false", true},
		{"Quest.accepted", false},
		{"!Quest.accepted", true},
		{"Quest.gold == 10", true},
		{"Quest.gold != 10", false},
		{"Quest.gold > 5", true},
		{"Quest.gold >= 11", false},
		{"Quest.gold < 100 && !Quest.accepted", true},
		{"Quest.accepted || Quest.gold == 10", true},
		{"Player.name == \"Ryn\"", true},
		{"Player.name == 'Ryn'", true},
		{"self == 'node-1'", true},
		{"speaker == 'npc-7'", true},
		{"Quest.gold + Player.level == 13", true},
		{"Quest.gold - Player.level * 2 == 4", true},
		{"(Quest.gold - Player.level) * 2 == 14", true},
		{"Quest.gold % 3 == 1", true},
		{"-Player.level == -3", true},
	}
	for _, tc := range cases {
		if got := evalCondition(t, env, tc.src); got != tc.want {
			t.Errorf("%q = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestConditionErrors(t *testing.T) {
	env := newEnv(t)

	if _, err := script.CompileCondition("Quest.gold >"); err == nil {
		t.Error("expected parse error for trailing operator")
	}
	if _, err := script.CompileCondition("(Quest.gold"); err == nil {
		t.Error("expected parse error for unclosed paren")
	}

	cond, err := script.CompileCondition("Quest.gold + 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := cond.Evaluate(context.Background(), env); err == nil {
		t.Error("expected non-bool result to error")
	}

	cond, err = script.CompileCondition("Unknown.var")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := cond.Evaluate(context.Background(), env); err == nil {
		t.Error("expected unknown identifier to error")
	}

	cond, err = script.CompileCondition("Quest.gold / 0 == 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := cond.Evaluate(context.Background(), env); err == nil {
		t.Error("expected division by zero to error")
	}
}

func TestShortCircuit(t *testing.T) {
	env := newEnv(t)
	// The right side would fail with unknown identifier if evaluated.
	if got := evalCondition(t, env, "false && Broken.var"); got {
		t.Error("expected false without evaluating right side")
	}
	if got := evalCondition(t, env, "true || Broken.var"); !got {
		t.Error("expected true without evaluating right side")
	}
}

func TestSeenBuiltins(t *testing.T) {
	env := newEnv(t)

	if !evalCondition(t, env, "unseen()") {
		t.Error("expected unseen() before any visit")
	}
	env.Store.IncrementSeenCounter("node-1")
	env.Store.IncrementSeenCounter("node-1")
	if !evalCondition(t, env, "seen()") {
		t.Error("expected seen() after visits")
	}
	if !evalCondition(t, env, "seenCount() == 2") {
		t.Error("expected seenCount() == 2")
	}
}

func TestInstructionAssignments(t *testing.T) {
	env := newEnv(t)
	run := func(src string) {
		t.Helper()
		in, err := script.CompileInstruction(src)
		if err != nil {
			t.Fatalf("compile %q: %v", src, err)
		}
		if err := in.Execute(context.Background(), env); err != nil {
			t.Fatalf("execute %q: %v", src, err)
		}
	}

	run("Quest.accepted = true")
	if v, _ := env.Store.GetBool("Quest", "accepted"); !v {
		t.Error("expected accepted=true")
	}

	run("Quest.gold = Quest.gold * 2; Quest.gold += 5")
	if v, _ := env.Store.GetInt("Quest", "gold"); v != 25 {
		t.Errorf("expected gold=25, got %d", v)
	}

	run("Quest.gold -= Player.level")
	if v, _ := env.Store.GetInt("Quest", "gold"); v != 22 {
		t.Errorf("expected gold=22, got %d", v)
	}

	run("Player.name = Player.name + ' the Bold'")
	if v, _ := env.Store.GetString("Player", "name"); v != "Ryn the Bold" {
		t.Errorf("expected concatenated name, got %q", v)
	}

	// Empty instruction is a no-op.
	run("")
}

func TestInstructionErrors(t *testing.T) {
	env := newEnv(t)

	in, err := script.CompileInstruction("Quest.gold = 'no'")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := in.Execute(context.Background(), env); err == nil {
		t.Error("expected kind mismatch to error")
	}

	in, err = script.CompileInstruction("Missing.var += 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := in.Execute(context.Background(), env); err == nil {
		t.Error("expected unknown target to error")
	}
}

func TestMethodCalls(t *testing.T) {
	env := newEnv(t)
	reg := script.NewRegistry()
	reg.Register("hasItem", func(ctx context.Context, args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("want 1 arg, got %d", len(args))
		}
		return args[0] == "rope", nil
	})
	reg.Register("roll", func(ctx context.Context, args []any) (any, error) {
		return 4, nil
	})
	env.Methods = reg

	if !evalCondition(t, env, "hasItem('rope')") {
		t.Error("expected hasItem('rope') to be true")
	}
	if evalCondition(t, env, "hasItem('sword')") {
		t.Error("expected hasItem('sword') to be false")
	}
	if !evalCondition(t, env, "roll() + Quest.gold == 14") {
		t.Error("expected method result to join arithmetic")
	}

	cond, _ := script.CompileCondition("missing()")
	if _, err := cond.Evaluate(context.Background(), env); err == nil {
		t.Error("expected unregistered method to error")
	}

	// Bare method call as an instruction.
	called := false
	reg.Register("notify", func(ctx context.Context, args []any) (any, error) {
		called = true
		return nil, nil
	})
	in, err := script.CompileInstruction("notify('hi'); Quest.gold += 1")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := in.Execute(context.Background(), env); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !called {
		t.Error("expected notify to be invoked")
	}
}

func TestRegistryNames(t *testing.T) {
	reg := script.NewRegistry()
	reg.Register("a", func(ctx context.Context, args []any) (any, error) { return nil, nil })
	reg.Register("b", func(ctx context.Context, args []any) (any, error) { return nil, nil })
	if got := len(reg.Names()); got != 2 {
		t.Fatalf("expected 2 names, got %d", got)
	}
}
