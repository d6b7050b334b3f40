package capabilities

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

type research struct {
	deps Deps
}

type hit struct {
	URL     string
	Summary string
}

func (r *research) search(ctx context.Context, args map[string]string) (string, error) {
	var in topicArgs
	if err := decode(args, &in); err != nil {
		return "", err
	}
	if in.Topic == "" {
		return "Errore: nessun topic fornito.", nil
	}

	body, err := r.get(ctx, r.deps.SearchURL+url.QueryEscape(in.Topic))
	if err != nil {
		r.deps.Logger.Warn("Web search failed", "topic", in.Topic, "err", err)
		return fmt.Sprintf("Errore durante la ricerca: %v", err), nil
	}
	hits, err := parseResults(body, r.deps.MaxResults)
	if err != nil {
		return fmt.Sprintf("Errore durante la ricerca: %v", err), nil
	}
	return formatResults(in.Topic, hits), nil
}

func (r *research) scrape(ctx context.Context, args map[string]string) (string, error) {
	var in urlArgs
	if err := decode(args, &in); err != nil {
		return "", err
	}
	u, err := url.Parse(in.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("Errore scraping: URL non valido %q", in.URL), nil
	}

	body, err := r.get(ctx, u.String())
	if err != nil {
		r.deps.Logger.Warn("Scrape failed", "url", in.URL, "err", err)
		return "Errore: impossibile scaricare il contenuto.", nil
	}
	text, err := extractText(body)
	if err != nil || text == "" {
		return "Errore: impossibile estrarre il contenuto.", nil
	}
	return fmt.Sprintf("Contenuto estratto dal sito %s:\n\n%s", in.URL, truncate(text, scrapeLimit)), nil
}

func (r *research) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.deps.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.deps.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatResults(topic string, hits []hit) string {
	var lines []string
	for _, h := range hits {
		if h.URL == "" || h.Summary == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s\n  → %s...", h.URL, truncate(h.Summary, summaryLimit)))
	}
	if len(lines) == 0 {
		return "Nessun risultato utile trovato."
	}
	return fmt.Sprintf("Risultati per '%s':\n", topic) + strings.Join(lines, "\n\n")
}

// parseResults reads DuckDuckGo result blocks: the link is the result__a
// anchor and the summary the result__snippet element.
func parseResults(body string, limit int) ([]hit, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var hits []hit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(hits) >= limit {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") {
			h := readHit(n)
			if h.URL != "" {
				hits = append(hits, h)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits, nil
}

func readHit(n *html.Node) hit {
	var h hit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a") && h.URL == "":
				h.URL = unwrapRedirect(attr(n, "href"))
			case hasClass(n, "result__snippet") && h.Summary == "":
				h.Summary = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return h
}

// unwrapRedirect turns //duckduckgo.com/l/?uddg=<target> into <target>.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// skipped holds elements whose text is never part of the main content.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"nav": true, "header": true, "footer": true, "aside": true,
	"form": true, "iframe": true, "svg": true,
}

// extractText returns the readable text of a page, preferring <article> or
// <main> when present.
func extractText(body string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}
	root := find(doc, "article")
	if root == nil {
		root = find(doc, "main")
	}
	if root == nil {
		root = doc
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				parts = append(parts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(parts, " "), nil
}

func find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
