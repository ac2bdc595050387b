package store

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/ui"
)

// FindByName resolves an installed package. "namespace/name" must match exactly;
// a bare name matches any namespace and, when several packages share it, the first
// one in scan order wins unless strict lookup is enabled.
func (s *Store) FindByName(query string) (PackageMetadata, error) {
	packages, err := s.ScanInstalled()
	if err != nil {
		return PackageMetadata{}, err
	}

	if parts := strings.Split(query, "/"); len(parts) == 2 {
		for _, p := range packages {
			if p.Manifest.Namespace == parts[0] && p.Manifest.Name == parts[1] {
				return p, nil
			}
		}
		return PackageMetadata{}, s.notFound(query, packages)
	}

	var matches []PackageMetadata
	for _, p := range packages {
		if p.Manifest.Name == query {
			matches = append(matches, p)
		}
	}

	switch {
	case len(matches) == 0:
		return PackageMetadata{}, s.notFound(query, packages)
	case len(matches) > 1 && s.strict:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.FullName())
		}
		return PackageMetadata{}, spmerrors.New(spmerrors.AmbiguousName,
			"%q matches %d installed packages: %s", query, len(matches), strings.Join(names, ", ")).
			WithRemediation("Use the full name, e.g. 'spm run " + names[0] + "'")
	case len(matches) > 1:
		ui.Debug("%q is ambiguous, using %s", query, matches[0].FullName())
	}
	return matches[0], nil
}

func (s *Store) notFound(query string, packages []PackageMetadata) error {
	err := spmerrors.New(spmerrors.PackageNotFound, "Package %s is not installed", query)
	if suggestions := suggest(query, packages, 3); len(suggestions) > 0 {
		steps := make([]string, 0, len(suggestions))
		for _, name := range suggestions {
			steps = append(steps, "Did you mean "+name+"?")
		}
		return err.WithRemediation(steps...)
	}
	return err.WithRemediation("Run 'spm list' to see installed packages")
}

// Suggest returns up to limit installed full names ranked by fuzzy similarity to query
func (s *Store) Suggest(query string, limit int) []string {
	packages, err := s.ScanInstalled()
	if err != nil {
		return nil
	}
	return suggest(query, packages, limit)
}

func suggest(query string, packages []PackageMetadata, limit int) []string {
	if query == "" || len(packages) == 0 {
		return nil
	}
	names := make([]string, 0, len(packages))
	for _, p := range packages {
		names = append(names, p.FullName())
	}

	matches := fuzzy.Find(query, names)
	var out []string
	for _, m := range matches {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

// KeywordSearch ranks installed packages against comma-separated keywords. An exact
// name or full name scores 2, the normalized name equal to the raw text scores 1, otherwise each keyword
// found among the dash-separated words of the normalized name or namespace adds 1.
// Packages that score 0 are left out; ties keep scan order.
func (s *Store) KeywordSearch(text string) ([]PackageMetadata, error) {
	packages, err := s.ScanInstalled()
	if err != nil {
		return nil, err
	}

	keywords := parseKeywords(text)

	type scored struct {
		pkg   PackageMetadata
		score int
	}
	var results []scored
	for _, p := range packages {
		if score := matchScore(p.Manifest, text, keywords); score > 0 {
			results = append(results, scored{pkg: p, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	out := make([]PackageMetadata, 0, len(results))
	for _, r := range results {
		out = append(out, r.pkg)
	}
	return out, nil
}

func parseKeywords(text string) []string {
	var keywords []string
	for _, k := range strings.Split(text, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func matchScore(m *manifest.Manifest, text string, keywords []string) int {
	if text == m.Name || text == m.FullName() {
		return 2
	}
	// The query itself is not normalized
	normalized := manifest.NormalizeName(m.Name)
	if normalized == strings.TrimSpace(text) {
		return 1
	}

	nameWords := strings.Split(normalized, "-")
	var namespaceWords []string
	if m.Namespace != "" {
		namespaceWords = strings.Split(manifest.NormalizeName(m.Namespace), "-")
	}

	score := 0
	for _, k := range keywords {
		if contains(nameWords, k) {
			score++
		}
		if contains(namespaceWords, k) {
			score++
		}
	}
	return score
}

func contains(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}
