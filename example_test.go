package espalier_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/dsl"
	"github.com/aretw0/espalier/pkg/flow"
)

// ExampleNew_memory demonstrates how to use the Engine with an in-memory
// graph definition. This is useful for testing, embedded scenarios, or
// when you don't want to rely on the file system.
func ExampleNew_memory() {
	// 1. Define your graph using plain node definitions.
	loader := memory.NewLoader([]flow.NodeDef{
		{
			ID:   "greet",
			Kind: "dialogue_fragment",
			Text: "Hello from memory!",
			To:   []string{"fork"},
		},
		{
			ID:   "fork",
			Kind: "hub",
			To:   []string{"ask", "leave"},
		},
		{
			ID:       "ask",
			Kind:     "dialogue_fragment",
			MenuText: "Ask about the garden",
			Text:     "The espalier out back is a hundred years old.",
		},
		{
			ID:       "leave",
			Kind:     "dialogue_fragment",
			MenuText: "Leave",
			Text:     "Mind the gate.",
		},
	}, nil)

	// 2. Initialize Espalier with the custom loader.
	// Note: We leave path empty ("") because we are providing a loader.
	engine, err := espalier.New("", espalier.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	// 3. Start the flow. The engine explores every reachable branch and
	// fast-forwards through the linear prefix up to the hub.
	ctx := context.Background()
	if err := engine.Start(ctx, "greet"); err != nil {
		log.Fatal(err)
	}

	// 4. Present the choices. Each branch target is a concrete flow
	// object; dialogue fragments carry a menu label.
	for _, b := range engine.Branches() {
		if df, ok := b.Target().(*flow.DialogueFragment); ok {
			fmt.Printf("[%d] %s\n", b.Index, df.MenuText())
		}
	}

	// 5. Pick a branch. Advance commits it and re-explores.
	if err := engine.Advance(ctx, 0); err != nil {
		log.Fatal(err)
	}
	if df, ok := engine.Cursor().(*flow.DialogueFragment); ok {
		fmt.Println(df.Text())
	}

	// Output:
	// [0] Ask about the garden
	// [1] Leave
	// The espalier out back is a hundred years old.
}

// ExampleNew_dsl demonstrates building a flow with the fluent builder
// and observing live variable writes. Instructions only touch the store
// when a branch is committed; speculative exploration never fires the
// listener.
func ExampleNew_dsl() {
	b := dsl.New()
	b.Variable("Player", "gold", 0)
	b.Line("greet").Text("Welcome back.").Go("pay")
	b.Instruction("pay", "Player.gold += 5").Go("done")
	b.Line("done").Text("Spend it wisely.")

	engine, err := espalier.New("", espalier.WithLoader(b.Build()))
	if err != nil {
		log.Fatal(err)
	}
	engine.OnVariableChanged(func(name string, value any) {
		fmt.Printf("%s = %v\n", name, value)
	})

	// Starting fast-forwards through the single linear path, which
	// commits the payment instruction for real.
	ctx := context.Background()
	if err := engine.Start(ctx, "greet"); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("choices: %d\n", len(engine.Branches()))
	if err := engine.Advance(ctx, 0); err != nil {
		log.Fatal(err)
	}
	if df, ok := engine.Cursor().(*flow.DialogueFragment); ok {
		fmt.Println(df.Text())
	}

	// Output:
	// Player.gold = 5
	// choices: 1
	// Spend it wisely.
}
