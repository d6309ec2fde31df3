// Package files turns the loosely typed file fields of a machine format into
// an ordered list of downloadable (url, name) pairs, and delivers them either
// as one file, one zip archive, or one by one.
//
// The splitting heuristics only exist to read legacy backend data where one
// string may hold several files. New data should arrive as arrays.
package files

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/alextreichler/embroiderystore/internal/models"
)

// Pair is one downloadable file.
type Pair struct {
	URL  string
	Name string
}

var (
	delimiters = regexp.MustCompile(`[,;|]`)
	jefEnd     = regexp.MustCompile(`\.jef`)
	httpStart  = regexp.MustCompile(`https?://`)
)

// Split breaks one raw field value into its entries.
//
// Order of checks: an explicit delimiter (, ; |) wins; otherwise a value with
// more than one ".jef" is cut after every ".jef"; otherwise a value with more
// than one "http" is cut before every http(s)://; otherwise it is one entry.
func Split(raw string) []string {
	switch {
	case delimiters.MatchString(raw):
		return clean(delimiters.Split(raw, -1))
	case strings.Count(raw, ".jef") > 1:
		return clean(cutAfter(raw, jefEnd))
	case strings.Count(raw, "http") > 1:
		return clean(cutBefore(raw, httpStart))
	}
	if s := strings.TrimSpace(raw); s != "" {
		return []string{s}
	}
	return nil
}

// Normalize returns the entries of a field: arrays as-is, strings split.
func Normalize(f models.FlexStrings) []string {
	if f.IsArray {
		return f.List
	}
	return Split(f.Raw)
}

// Reconcile pairs the normalized url and name lists.
//
//   - equal lengths are zipped in order
//   - one url and many names pairs that url with every name
//   - many urls and one name numbers the name per url: "1_name", "2_name", ...
//   - anything else yields a single pair of the unsplit raw values
//
// The one-url/many-names rule repeats the same url; it mirrors what the
// backend data has always produced and is kept as is.
func Reconcile(urls, names []string, rawURL, rawName string) []Pair {
	switch {
	case len(urls) == len(names):
		pairs := make([]Pair, len(urls))
		for i := range urls {
			pairs[i] = Pair{URL: urls[i], Name: names[i]}
		}
		return pairs
	case len(urls) == 1 && len(names) > 1:
		pairs := make([]Pair, len(names))
		for i, n := range names {
			pairs[i] = Pair{URL: urls[0], Name: n}
		}
		return pairs
	case len(urls) > 1 && len(names) == 1:
		pairs := make([]Pair, len(urls))
		for i, u := range urls {
			pairs[i] = Pair{URL: u, Name: fmt.Sprintf("%d_%s", i+1, names[0])}
		}
		return pairs
	}
	return []Pair{{URL: rawURL, Name: rawName}}
}

// FromDescriptor produces the download list for one machine format. Both
// fields absent gives an empty list. Pairs without a url are dropped and a
// missing name falls back to the last path segment of the url.
func FromDescriptor(d models.FileDescriptor) []Pair {
	if d.FileURL.Empty() && d.FileName.Empty() {
		return nil
	}
	pairs := Reconcile(Normalize(d.FileURL), Normalize(d.FileName), d.FileURL.String(), d.FileName.String())

	out := pairs[:0]
	for _, p := range pairs {
		p.URL = strings.TrimSpace(p.URL)
		if p.URL == "" {
			continue
		}
		if strings.TrimSpace(p.Name) == "" {
			p.Name = nameFromURL(p.URL)
		}
		out = append(out, p)
	}
	return out
}

// ForProduct collects the pairs of every format of a product, each name
// prefixed with its format folder ("DST/rose.dst").
func ForProduct(p *models.Product) []Pair {
	var all []Pair
	for _, format := range p.Formats() {
		for _, pair := range FromDescriptor(p.Files[format]) {
			pair.Name = format + "/" + pair.Name
			all = append(all, pair)
		}
	}
	return all
}

func nameFromURL(u string) string {
	u, _, _ = strings.Cut(u, "?")
	base := path.Base(u)
	if base == "." || base == "/" || base == "" {
		return "design"
	}
	return base
}

func cutAfter(s string, re *regexp.Regexp) []string {
	var parts []string
	start := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		parts = append(parts, s[start:loc[1]])
		start = loc[1]
	}
	return append(parts, s[start:])
}

func cutBefore(s string, re *regexp.Regexp) []string {
	var parts []string
	start := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] > start {
			parts = append(parts, s[start:loc[0]])
		}
		start = loc[0]
	}
	return append(parts, s[start:])
}

func clean(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
