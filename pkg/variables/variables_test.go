package variables_test

import (
	"testing"

	"github.com/aretw0/espalier/pkg/variables"
)

func newStore(t *testing.T) *variables.Store {
	t.Helper()
	s := variables.NewStore()
	if err := s.Declare("Quest", "accepted", false); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if err := s.Declare("Quest", "gold", 10); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if err := s.Declare("Player", "name", "Ryn"); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	return s
}

func TestDeclareAndGet(t *testing.T) {
	s := newStore(t)

	if v, ok := s.GetBool("Quest", "accepted"); !ok || v {
		t.Errorf("expected accepted=false, got %v ok=%v", v, ok)
	}
	if v, ok := s.GetInt("Quest", "gold"); !ok || v != 10 {
		t.Errorf("expected gold=10, got %v ok=%v", v, ok)
	}
	if v, ok := s.GetByFullName("Player.name"); !ok || v != "Ryn" {
		t.Errorf("expected name=Ryn, got %v ok=%v", v, ok)
	}
	if _, ok := s.Get("Quest", "missing"); ok {
		t.Error("expected missing variable to report !ok")
	}
}

func TestDeclareRejectsDuplicatesAndBadTypes(t *testing.T) {
	s := newStore(t)
	if err := s.Declare("Quest", "accepted", true); err == nil {
		t.Error("expected duplicate declare to fail")
	}
	if err := s.Declare("Quest", "ratio", 1.5); err == nil {
		t.Error("expected float declare to fail")
	}
}

func TestSetEnforcesKind(t *testing.T) {
	s := newStore(t)
	if err := s.Set("Quest", "gold", "lots"); err == nil {
		t.Error("expected type mismatch error")
	}
	if err := s.SetByFullName("Quest.gold", 25); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, _ := s.GetInt("Quest", "gold"); v != 25 {
		t.Errorf("expected gold=25, got %d", v)
	}
}

func TestShadowedWritesAreRestored(t *testing.T) {
	s := newStore(t)

	s.PushState(1)
	if err := s.Set("Quest", "gold", 99); err != nil {
		t.Fatalf("shadowed set failed: %v", err)
	}
	if err := s.Set("Quest", "gold", 100); err != nil {
		t.Fatalf("second shadowed set failed: %v", err)
	}
	if v, _ := s.GetInt("Quest", "gold"); v != 100 {
		t.Errorf("shadowed value should be visible, got %d", v)
	}
	s.PopState(1)

	if v, _ := s.GetInt("Quest", "gold"); v != 10 {
		t.Errorf("expected original value 10 after pop, got %d", v)
	}
	if s.ShadowLevel() != 0 {
		t.Errorf("expected shadow level 0, got %d", s.ShadowLevel())
	}
}

func TestNestedShadowLevels(t *testing.T) {
	s := newStore(t)

	s.PushState(1)
	_ = s.Set("Quest", "gold", 20)
	s.PushState(2)
	_ = s.Set("Quest", "gold", 30)
	if v, _ := s.GetInt("Quest", "gold"); v != 30 {
		t.Fatalf("expected 30 at level 2, got %d", v)
	}
	s.PopState(2)
	if v, _ := s.GetInt("Quest", "gold"); v != 20 {
		t.Fatalf("expected 20 back at level 1, got %d", v)
	}
	s.PopState(1)
	if v, _ := s.GetInt("Quest", "gold"); v != 10 {
		t.Fatalf("expected 10 at level 0, got %d", v)
	}
}

func TestUntouchedVariableSkipsShadowCopy(t *testing.T) {
	s := newStore(t)
	s.PushState(1)
	s.PopState(1)
	if v, _ := s.GetString("Player", "name"); v != "Ryn" {
		t.Errorf("expected untouched variable to survive, got %q", v)
	}
}

func TestOnChangeFiresOnlyAtLevelZero(t *testing.T) {
	s := newStore(t)
	var fired []string
	s.OnChange(func(fullName string, value any) {
		fired = append(fired, fullName)
	})

	s.PushState(1)
	_ = s.Set("Quest", "gold", 50)
	s.PopState(1)
	if len(fired) != 0 {
		t.Fatalf("shadowed write should not notify, got %v", fired)
	}

	_ = s.Set("Quest", "gold", 11)
	if len(fired) != 1 || fired[0] != "Quest.gold" {
		t.Fatalf("expected one live notification for Quest.gold, got %v", fired)
	}
}

func TestSeenCounters(t *testing.T) {
	s := variables.NewStore()

	if got := s.SeenCounter("a"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	s.IncrementSeenCounter("a")
	s.IncrementSeenCounter("a")
	if got := s.SeenCounter("a"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	s.PushSeen()
	if got := s.SeenCounter("a"); got != 2 {
		t.Fatalf("pushed layer should copy counters, got %d", got)
	}
	s.IncrementSeenCounter("a")
	s.SetSeenCounter("b", 7)
	if got := s.SeenCounter("a"); got != 3 {
		t.Fatalf("expected 3 in shadow layer, got %d", got)
	}
	s.PopSeen()

	if got := s.SeenCounter("a"); got != 2 {
		t.Fatalf("expected 2 after pop, got %d", got)
	}
	if got := s.SeenCounter("b"); got != 0 {
		t.Fatalf("expected b to be discarded with the layer, got %d", got)
	}
}

func TestResetVisited(t *testing.T) {
	s := variables.NewStore()
	s.IncrementSeenCounter("a")
	s.PushSeen()
	s.IncrementSeenCounter("a")
	s.ResetVisited()
	if got := s.SeenCounter("a"); got != 0 {
		t.Fatalf("expected 0 after reset, got %d", got)
	}
	s.PopSeen()
	if got := s.SeenCounter("a"); got != 0 {
		t.Fatalf("expected 0 at base after reset, got %d", got)
	}
}

func TestFallbackFlags(t *testing.T) {
	s := variables.NewStore()
	if s.Fallback("node") {
		t.Fatal("fallback should default to false")
	}
	s.SetFallbackEvaluation("node", true)
	if !s.Fallback("node") {
		t.Fatal("fallback flag should be set")
	}

	s.PushSeen()
	if !s.Fallback("node") {
		t.Fatal("fallback flag should be copied into the new layer")
	}
	s.SetFallbackEvaluation("node", false)
	if s.Fallback("node") {
		t.Fatal("fallback flag should be cleared in the layer")
	}
	s.PopSeen()

	if !s.Fallback("node") {
		t.Fatal("fallback flag should survive in the base layer")
	}
	s.SetFallbackEvaluation("node", false)
	if s.Fallback("node") {
		t.Fatal("fallback flag should be cleared")
	}
}

func TestSnapshot(t *testing.T) {
	s := newStore(t)
	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap))
	}
	if snap["Quest.gold"] != 10 {
		t.Errorf("expected Quest.gold=10, got %v", snap["Quest.gold"])
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in       string
		ns, name string
		ok       bool
	}{
		{"Quest.accepted", "Quest", "accepted", true},
		{"A.b.c", "A", "b.c", true},
		{"noseparator", "", "", false},
		{".leading", "", "", false},
		{"trailing.", "", "", false},
	}
	for _, tc := range cases {
		ns, name, ok := variables.SplitName(tc.in)
		if ns != tc.ns || name != tc.name || ok != tc.ok {
			t.Errorf("SplitName(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.in, ns, name, ok, tc.ns, tc.name, tc.ok)
		}
	}
}
