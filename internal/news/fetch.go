// Package news fetches headlines for a symbol from the Alpaca news API and
// Google News RSS. It exists to feed the sentiment signal source; article
// bodies are not needed, only timestamps and headlines.
package news

import (
	"encoding/xml"
	"html"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// Article is a single news headline from any source.
type Article struct {
	Time     time.Time
	Source   string
	Headline string
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// --- Alpaca ---

// FetchAlpacaNews fetches headlines from the Alpaca marketdata API.
func FetchAlpacaNews(mdc *marketdata.Client, symbol string, start, end time.Time) ([]Article, error) {
	alpacaNews, err := mdc.GetNews(marketdata.GetNewsRequest{
		Symbols:    []string{symbol},
		Start:      start,
		End:        end,
		TotalLimit: 500,
		Sort:       marketdata.SortAsc,
	})
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(alpacaNews))
	for _, a := range alpacaNews {
		articles = append(articles, Article{
			Time:     a.CreatedAt,
			Source:   "alpaca",
			Headline: a.Headline,
		})
	}
	return articles, nil
}

// --- Google News RSS ---

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	PubDate string `xml:"pubDate"`
}

// FetchGoogleNews fetches headlines from Google News RSS, filtered to
// [start, end].
func FetchGoogleNews(symbol string, start, end time.Time) ([]Article, error) {
	q := url.QueryEscape(symbol + " stock")
	u := "https://news.google.com/rss/search?q=" + q + "&hl=en-US&gl=US&ceid=US:en"

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return parseGoogleNews(resp.Body, start, end)
}

// parseGoogleNews decodes a Google News RSS document into articles within
// [start, end]. Items with unparseable timestamps are skipped.
func parseGoogleNews(r io.Reader, start, end time.Time) ([]Article, error) {
	var rss rssResponse
	if err := xml.NewDecoder(r).Decode(&rss); err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range rss.Channel.Items {
		t, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			t, err = time.Parse(time.RFC1123, item.PubDate)
			if err != nil {
				continue
			}
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		articles = append(articles, Article{
			Time:     t,
			Source:   "google",
			Headline: html.UnescapeString(strings.TrimSpace(item.Title)),
		})
	}
	return articles, nil
}

// FetchAll combines all sources for a symbol, deduplicated by headline and
// sorted by time ascending. Source errors are tolerated as long as at least
// one source succeeds.
func FetchAll(mdc *marketdata.Client, symbol string, start, end time.Time) ([]Article, error) {
	var all []Article
	var firstErr error

	if mdc != nil {
		articles, err := FetchAlpacaNews(mdc, symbol, start, end)
		if err != nil {
			firstErr = err
		} else {
			all = append(all, articles...)
		}
	}

	articles, err := FetchGoogleNews(symbol, start, end)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		all = append(all, articles...)
	}

	if len(all) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return dedupeArticles(all), nil
}

// dedupeArticles drops case-insensitive duplicate headlines, keeping the
// first occurrence, and sorts the remainder by time ascending.
func dedupeArticles(all []Article) []Article {
	seen := make(map[string]bool, len(all))
	deduped := all[:0]
	for _, a := range all {
		key := strings.ToLower(a.Headline)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, a)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Time.Before(deduped[j].Time) })
	return deduped
}
