/*
Package cinegraph is a tool-orchestration engine for a film blog assistant.

A decision model never answers the human directly: at every step it picks one
capability (web search, scraping, article generation, fact checking, ...) and
the engine runs it, records the result and asks again. Generated articles and
suggestion lists are handed to a human reviewer, who can keep them or steer
the next step with a new instruction.

# Concept

The engine is a small fixed graph driven by one loop:

	assistant --call--> tools --review--> human_review --> assistant
	    |                 |--suggestion--> deal_with_suggestion --> assistant
	    |                 '--continue--> assistant
	    '--no_call--> end

Every transition is checkpointed under (thread_id, checkpoint_ns,
checkpoint_id), so a session survives restarts. A reviewer that cannot answer
synchronously suspends the session; Resume continues it later.

# Usage

	eng, err := cinegraph.New(
		cinegraph.WithModel(model),
		cinegraph.WithStore(file.New(".cinegraph/checkpoints")),
	)
	if err != nil {
		log.Fatal(err)
	}

	cfg := domain.NewSessionConfig()
	res, err := eng.Invoke(ctx, cfg, "scrivi un articolo su Dune")
	if err != nil {
		log.Fatal(err)
	}
	if res.Suspended != nil {
		fmt.Println(res.Suspended.Request.Content)
		res, err = eng.Resume(ctx, cfg, domain.Keep())
	}
*/
package cinegraph
