package capabilities

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cinegraph/pkg/ports"
)

// System prompts of the LLM-backed capabilities.
const (
	EvaluatorSystem = "Agisci come valutatore di fonti per un blog cinematografico."
	ArticleSystem   = "Agisci come esperto cinematografico e scrivi un articolo in base al prompt dato.\n" +
		"Se non è specificato altrimenti scrivi articoli di massimo 250 parole. " +
		"Devi essere creativo e usare tagli e parole diverse quando richiesto."
	FactCheckSystem = "Sei un fact-checker per articoli cinematografici."
	ReportSystem    = "Agisci come editor e ottimizzatore di contenuti per blog cinematografici."
	SuggestSystem   = "Agisci come editor creativo di un blog sul cinema."
)

const suggestPrompt = "Suggeriscimi 5 idee originali per articoli brevi (<200 parole) a tema cinematografico. " +
	"Scrivi solo i titoli in lista numerata. Suggerisci sempre cose diverse."

type writer struct {
	completer ports.Completer
	logger    *slog.Logger
}

func (w *writer) complete(ctx context.Context, name, system, prompt string) (string, error) {
	out, err := w.completer.Complete(ctx, system, prompt)
	if err != nil {
		w.logger.Warn("Completion failed", "capability", name, "err", err)
		return "", err
	}
	return out, nil
}

func (w *writer) evaluateSource(ctx context.Context, args map[string]string) (string, error) {
	var in urlArgs
	if err := decode(args, &in); err != nil {
		return "", err
	}
	return w.complete(ctx, "evaluate_source", EvaluatorSystem,
		fmt.Sprintf("Sto considerando questa fonte: %s\nValuta questa fonte e rispondi in JSON:", in.URL))
}

func (w *writer) generateArticle(ctx context.Context, args map[string]string) (string, error) {
	var in promptArgs
	if err := decode(args, &in); err != nil {
		return "", err
	}
	return w.complete(ctx, "generate_article", ArticleSystem, "Prompt dell'articolo: "+in.Prompt)
}

func (w *writer) checkFact(ctx context.Context, args map[string]string) (string, error) {
	var in factArgs
	if err := decode(args, &in); err != nil {
		return "", err
	}
	if in.Content == "" || in.URL == "" || in.Evaluation == "" {
		return "Errore: uno o più campi richiesti sono vuoti.", nil
	}
	return w.complete(ctx, "check_fact", FactCheckSystem, fmt.Sprintf(
		"Sto scrivendo questo articolo:\n\n%s\n\nLa fonte è: %s\nValutazione della fonte: %s\nLa fonte conferma il contenuto?",
		in.Content, in.URL, in.Evaluation))
}

func (w *writer) generateReport(ctx context.Context, args map[string]string) (string, error) {
	var in reportArgs
	if err := decode(args, &in); err != nil {
		return "", err
	}
	return w.complete(ctx, "generate_report", ReportSystem,
		"Ecco le fonti analizzate e i risultati del fact-checking:\n"+in.CheckedSources+"\n\n"+
			"Sulla base di queste, genera un report che:\n"+
			"- Valuta l'affidabilità generale del mio articolo\n"+
			"- Indica se ci sono elementi da correggere\n"+
			"- Suggerisce miglioramenti stilistici o di contenuto")
}

func (w *writer) suggestArticles(ctx context.Context, _ map[string]string) (string, error) {
	out, err := w.complete(ctx, "suggest_articles", SuggestSystem, suggestPrompt)
	if err != nil {
		return fmt.Sprintf("Errore durante la generazione dei suggerimenti: %v", err), nil
	}
	return out, nil
}
