package cinegraph_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/cinegraph"
	"github.com/aretw0/cinegraph/pkg/adapters/scripted"
	"github.com/aretw0/cinegraph/pkg/domain"
)

// ExampleNew_scripted runs an article request against a scripted model, so
// no API key or network access is needed. The session suspends at the review
// step and is resumed with a keep decision.
func ExampleNew_scripted() {
	model := scripted.NewModel(
		scripted.Call(domain.CapGenerateArticle, map[string]string{"prompt": "Dune"}),
		scripted.Silence(),
	)
	completer := scripted.NewCompleter(map[string]string{
		"esperto cinematografico": "Dune: il deserto come destino.",
	})

	engine, err := cinegraph.New(
		cinegraph.WithModel(model),
		cinegraph.WithCompleter(completer),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	cfg := domain.NewSessionConfig()

	res, err := engine.Invoke(ctx, cfg, "scrivi un articolo su Dune")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Awaiting: %s\n", res.Suspended.Node)
	fmt.Printf("Article: %s\n", res.Suspended.Request.Content)

	res, err = engine.Resume(ctx, cfg, domain.Keep())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Reason: %s\n", res.Reason)
	fmt.Printf("Messages: %d\n", len(res.Checkpoint.Messages))
	// Output:
	// Awaiting: human_review
	// Article: Dune: il deserto come destino.
	// Reason: no_action
	// Messages: 3
}
