/*
Package runner implements the interactive chat loop on top of the cinegraph engine.

It reads human turns line by line, hands them to the engine and prints what
the turn produced together with the capabilities that were invoked. The loop
ends when the human types a termination word (no, basta, esci, niente, stop)
or declines the follow-up question.

# Key Components

  - Runner: the loop itself.
  - IOHandler: decouples how turns are read and results are shown.
  - TextHandler: human-readable terminal output with a line prompt.
  - JSONHandler: one JSON object per line, for scripting.
  - ConsoleReviewer: answers the review and suggestion decisions by asking
    the human through an IOHandler.

# Usage

	handler := runner.NewTextHandler(os.Stdin, os.Stdout)
	defer handler.Close()

	eng, _ := cinegraph.New(
		cinegraph.WithModel(model),
		cinegraph.WithReviewer(runner.NewConsoleReviewer(handler)),
	)

	r := runner.NewRunner(eng, runner.WithInputHandler(handler))
	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
