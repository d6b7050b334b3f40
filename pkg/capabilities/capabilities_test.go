package capabilities_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/cinegraph/pkg/adapters/scripted"
	"github.com/aretw0/cinegraph/pkg/capabilities"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/aretw0/cinegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result results_links results_links_deep web-result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fdune&rut=x">Dune</a></h2>
  <a class="result__snippet" href="#">Villeneuve adatta il romanzo di Herbert.</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://example.org/no-snippet">Senza riassunto</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://example.net/arrakis">Arrakis</a>
  <div class="result__snippet">` + "%s" + `</div>
</div>
</body></html>`

const articlePage = `<html><head><title>t</title><style>body{}</style></head><body>
<nav>Home | Recensioni</nav>
<header>Il Blog</header>
<article><h1>Dune</h1><p>Un   film
 epico.</p><script>track()</script></article>
<footer>Copyright</footer>
</body></html>`

type fakeCompleter struct {
	err error
}

func (f fakeCompleter) Complete(context.Context, string, string) (string, error) {
	return "", f.err
}

func newRegistry(t *testing.T, srv *httptest.Server, completer *scripted.Completer) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	deps := capabilities.Deps{Completer: completer}
	if srv != nil {
		deps.HTTP = srv.Client()
		deps.SearchURL = srv.URL + "/html/?q="
	}
	require.NoError(t, capabilities.Register(reg, deps))
	return reg
}

func TestRegister_InstallsAllSeven(t *testing.T) {
	reg := newRegistry(t, nil, scripted.NewCompleter(nil))
	tools := reg.Tools()
	require.Len(t, tools, 7)

	seen := map[string]bool{}
	for _, tool := range tools {
		seen[tool.Name] = true
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	for _, name := range []string{
		domain.CapWebSearch, domain.CapScrapeWebsite, domain.CapEvaluateSource,
		domain.CapGenerateArticle, domain.CapCheckFact, domain.CapGenerateReport,
		domain.CapSuggestArticles,
	} {
		assert.True(t, seen[name], name)
	}
}

func TestRegister_RequiresCompleter(t *testing.T) {
	assert.Error(t, capabilities.Register(registry.NewRegistry(), capabilities.Deps{}))
}

func TestWebSearch(t *testing.T) {
	long := strings.Repeat("d", 250)
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprintf(w, resultsPage, long)
	}))
	defer srv.Close()

	reg := newRegistry(t, srv, scripted.NewCompleter(nil))
	out := reg.Invoke(context.Background(), domain.CapWebSearch, map[string]string{"topic": "Dune parte due"})

	assert.Equal(t, "Dune parte due", query)
	assert.True(t, strings.HasPrefix(out, "Risultati per 'Dune parte due':\n"), out)
	assert.Contains(t, out, "- https://example.com/dune\n  → Villeneuve adatta il romanzo di Herbert....")
	assert.NotContains(t, out, "no-snippet", "hits without a summary are dropped")
	assert.Contains(t, out, "  → "+strings.Repeat("d", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("d", 201))
}

func TestWebSearch_NoUsefulResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body><p>nulla</p></body></html>")
	}))
	defer srv.Close()

	reg := newRegistry(t, srv, scripted.NewCompleter(nil))
	assert.Equal(t, "Nessun risultato utile trovato.",
		reg.Invoke(context.Background(), domain.CapWebSearch, map[string]string{"topic": "x"}))
}

func TestWebSearch_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	reg := newRegistry(t, srv, scripted.NewCompleter(nil))
	out := reg.Invoke(context.Background(), domain.CapWebSearch, map[string]string{"topic": "x"})
	assert.Equal(t, "Errore durante la ricerca: HTTP 503", out)
}

func TestWebSearch_BlankTopic(t *testing.T) {
	reg := newRegistry(t, nil, scripted.NewCompleter(nil))
	out := reg.Invoke(context.Background(), domain.CapWebSearch, map[string]string{"topic": "   "})
	assert.Equal(t, "Errore: argomenti mancanti per web_search: topic", out)
}

func TestScrapeWebsite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/long":
			fmt.Fprintf(w, "<html><body><p>%s</p></body></html>", strings.Repeat("è", 4000))
		case "/missing":
			http.NotFound(w, r)
		default:
			fmt.Fprint(w, articlePage)
		}
	}))
	defer srv.Close()

	reg := newRegistry(t, srv, scripted.NewCompleter(nil))
	ctx := context.Background()

	out := reg.Invoke(ctx, domain.CapScrapeWebsite, map[string]string{"url": srv.URL + "/dune"})
	assert.Equal(t, "Contenuto estratto dal sito "+srv.URL+"/dune:\n\nDune Un film epico.", out)

	out = reg.Invoke(ctx, domain.CapScrapeWebsite, map[string]string{"url": srv.URL + "/long"})
	body := strings.SplitN(out, "\n\n", 2)[1]
	assert.Equal(t, 3000, len([]rune(body)))

	out = reg.Invoke(ctx, domain.CapScrapeWebsite, map[string]string{"url": srv.URL + "/missing"})
	assert.Equal(t, "Errore: impossibile scaricare il contenuto.", out)

	out = reg.Invoke(ctx, domain.CapScrapeWebsite, map[string]string{"url": "file:///etc/passwd"})
	assert.Contains(t, out, "Errore scraping")
}

func TestGenerateArticle(t *testing.T) {
	completer := scripted.NewCompleter(map[string]string{"esperto cinematografico": "Un articolo su Dune."})
	reg := newRegistry(t, nil, completer)

	out := reg.Invoke(context.Background(), domain.CapGenerateArticle, map[string]string{"prompt": "Dune"})
	assert.Equal(t, "Un articolo su Dune.", out)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, "Prompt dell'articolo: Dune", prompts[0])
}

func TestCheckFact(t *testing.T) {
	completer := scripted.NewCompleter(map[string]string{"fact-checker": "La fonte conferma."})
	reg := newRegistry(t, nil, completer)
	ctx := context.Background()

	out := reg.Invoke(ctx, domain.CapCheckFact, map[string]string{
		"content": "Dune è del 2021", "url": "https://example.com", "evaluation": "affidabile",
	})
	assert.Equal(t, "La fonte conferma.", out)
	assert.Contains(t, completer.Prompts()[0], "Valutazione della fonte: affidabile")

	out = reg.Invoke(ctx, domain.CapCheckFact, map[string]string{
		"content": "Dune", "url": "https://example.com", "evaluation": " ",
	})
	assert.Equal(t, "Errore: argomenti mancanti per check_fact: evaluation", out)
}

func TestGenerateReportAndEvaluate(t *testing.T) {
	completer := scripted.NewCompleter(map[string]string{
		"ottimizzatore": "Report pronto.",
		"valutatore":    `{"affidabilita": "alta"}`,
	})
	reg := newRegistry(t, nil, completer)
	ctx := context.Background()

	assert.Equal(t, "Report pronto.",
		reg.Invoke(ctx, domain.CapGenerateReport, map[string]string{"checked_sources": "fonte A: ok"}))
	assert.Equal(t, `{"affidabilita": "alta"}`,
		reg.Invoke(ctx, domain.CapEvaluateSource, map[string]string{"url": "https://example.com"}))
}

func TestSuggestArticles(t *testing.T) {
	completer := scripted.NewCompleter(map[string]string{"editor creativo": "1. A\n2. B"})
	reg := newRegistry(t, nil, completer)
	assert.Equal(t, "1. A\n2. B", reg.Invoke(context.Background(), domain.CapSuggestArticles, nil))
}

func TestSuggestArticles_CompleterError(t *testing.T) {
	reg := registry.NewRegistry()
	require.NoError(t, capabilities.Register(reg, capabilities.Deps{Completer: fakeCompleter{err: errors.New("quota")}}))

	out := reg.Invoke(context.Background(), domain.CapSuggestArticles, nil)
	assert.Equal(t, "Errore durante la generazione dei suggerimenti: quota", out)

	out = reg.Invoke(context.Background(), domain.CapGenerateArticle, map[string]string{"prompt": "x"})
	assert.Contains(t, out, "quota")
}
