// Package capabilities implements the seven film-blog capabilities offered
// to the decision model: research (web_search, scrape_website), writing
// (generate_article, suggest_articles) and verification (evaluate_source,
// check_fact, generate_report).
//
// Handlers never fail towards the engine: problems are reported as text so
// the model can read them and pick another step.
package capabilities

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/cinegraph/internal/logging"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/ports"
	"github.com/aretw0/cinegraph/pkg/registry"
)

const (
	// DefaultSearchURL is the DuckDuckGo HTML endpoint. The query is appended.
	DefaultSearchURL = "https://html.duckduckgo.com/html/?q="
	// DefaultMaxResults is how many search hits are reported.
	DefaultMaxResults = 5
	// DefaultUserAgent is sent with every outgoing request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; cinegraph/1.0)"

	summaryLimit = 200
	scrapeLimit  = 3000
	maxBodyBytes = 2 << 20
)

// Deps are the collaborators shared by all capabilities.
type Deps struct {
	// Completer backs the LLM capabilities. Required.
	Completer ports.Completer
	// HTTP is used by web_search and scrape_website. Defaults to a client
	// with a 30 second timeout.
	HTTP       *http.Client
	SearchURL  string
	MaxResults int
	UserAgent  string
	Logger     *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.HTTP == nil {
		d.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if d.SearchURL == "" {
		d.SearchURL = DefaultSearchURL
	}
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultMaxResults
	}
	if d.UserAgent == "" {
		d.UserAgent = DefaultUserAgent
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return d
}

// Tools returns the contracts of the seven capabilities.
func Tools() []domain.Tool {
	return []domain.Tool{
		{
			Name:        domain.CapWebSearch,
			Description: "Esegue una ricerca web sul topic fornito e restituisce i primi risultati con un breve riassunto.",
			Parameters:  []domain.Parameter{{Name: "topic", Description: "Argomento da cercare", Required: true}},
		},
		{
			Name:        domain.CapScrapeWebsite,
			Description: "Estrae il contenuto testuale principale di una pagina web.",
			Parameters:  []domain.Parameter{{Name: "url", Description: "Indirizzo della pagina", Required: true}},
		},
		{
			Name:        domain.CapEvaluateSource,
			Description: "Valuta la qualità e affidabilità di una fonte fornita (URL).",
			Parameters:  []domain.Parameter{{Name: "url", Description: "Indirizzo della fonte", Required: true}},
		},
		{
			Name:        domain.CapGenerateArticle,
			Description: "Genera un articolo cinematografico a partire da un prompt fornito.",
			Parameters:  []domain.Parameter{{Name: "prompt", Description: "Richiesta per l'articolo", Required: true}},
		},
		{
			Name:        domain.CapCheckFact,
			Description: "Confronta il contenuto dell'articolo con una fonte e ne valuta l'accuratezza.",
			Parameters: []domain.Parameter{
				{Name: "content", Description: "Testo dell'articolo", Required: true},
				{Name: "url", Description: "Fonte di confronto", Required: true},
				{Name: "evaluation", Description: "Valutazione della fonte", Required: true},
			},
		},
		{
			Name:        domain.CapGenerateReport,
			Description: "Genera un report sull'affidabilità complessiva dell'articolo.",
			Parameters:  []domain.Parameter{{Name: "checked_sources", Description: "Fonti verificate e risultati del fact-checking", Required: true}},
		},
		{
			Name:        domain.CapSuggestArticles,
			Description: "Suggerisce 5 idee originali per articoli cinematografici.",
		},
	}
}

// Register installs every capability into reg.
func Register(reg *registry.Registry, deps Deps) error {
	if deps.Completer == nil {
		return errNoCompleter
	}
	deps = deps.withDefaults()

	research := &research{deps: deps}
	writer := &writer{completer: deps.Completer, logger: deps.Logger}

	handlers := map[string]registry.Handler{
		domain.CapWebSearch:       research.search,
		domain.CapScrapeWebsite:   research.scrape,
		domain.CapEvaluateSource:  writer.evaluateSource,
		domain.CapGenerateArticle: writer.generateArticle,
		domain.CapCheckFact:       writer.checkFact,
		domain.CapGenerateReport:  writer.generateReport,
		domain.CapSuggestArticles: writer.suggestArticles,
	}
	for _, tool := range Tools() {
		if err := reg.Register(tool, handlers[tool.Name]); err != nil {
			return err
		}
	}
	return nil
}
