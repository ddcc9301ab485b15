// Package lexicon loads the per-language frequency, name and title
// dictionaries and exposes the lookup and edit-distance primitives used by
// the spelling corrector.
//
// Dictionary files live in one directory and follow the SymSpell-style
// line format produced by the dictionary generation tooling:
//
//	frequency_<lang>.txt   word and count, space separated
//	names.<lang>.txt       name and count, tab separated
//	book_titles.<lang>.txt title and count, tab separated
//
// A missing or unreadable file marks the language unavailable; correction
// for that language degrades to passthrough instead of failing the run.
package lexicon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

type language struct {
	words       map[string]int64
	names       map[string]struct{}
	titles      []string
	titleTokens map[string]struct{}
}

// Store holds the loaded dictionaries. Languages are loaded lazily on first
// use and are read-only afterwards, so concurrent readers are safe.
type Store struct {
	dir       string
	maxEdit   int
	supported map[string]struct{}
	log       *zap.SugaredLogger

	mu    sync.RWMutex
	langs map[string]*language // nil entry = tried and unavailable
}

// New creates a Store reading dictionaries from dir for the given languages.
// maxEdit is the correction edit distance threshold.
func New(dir string, languages []string, maxEdit int, log *zap.SugaredLogger) *Store {
	supported := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		supported[l] = struct{}{}
	}

	return &Store{
		dir:       dir,
		maxEdit:   maxEdit,
		supported: supported,
		log:       log,
		langs:     map[string]*language{},
	}
}

// Require eagerly loads every configured language and fails if none of them
// is usable. This is the only unrecoverable configuration condition.
func (s *Store) Require() error {
	available := 0
	for lang := range s.supported {
		if s.Available(lang) {
			available++
		}
	}

	if available == 0 {
		return fmt.Errorf("lexicon: no dictionaries available in %s for any configured language", s.dir)
	}

	return nil
}

// Available reports whether the language's dictionaries are loaded, loading
// them on first call.
func (s *Store) Available(lang string) bool {
	return s.get(lang) != nil
}

func (s *Store) get(lang string) *language {
	if _, ok := s.supported[lang]; !ok {
		return nil
	}

	s.mu.RLock()
	l, loaded := s.langs[lang]
	s.mu.RUnlock()
	if loaded {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, loaded := s.langs[lang]; loaded {
		return l
	}

	l = s.load(lang)
	s.langs[lang] = l
	return l
}

// load reads the three dictionary files for a language. The frequency
// dictionary is mandatory; names and titles are optional extras whose
// absence only narrows what the corrector can do.
func (s *Store) load(lang string) *language {
	words, err := readFrequencyFile(filepath.Join(s.dir, "frequency_"+lang+".txt"), " ")
	if err != nil {
		s.log.Errorw("lexicon unavailable", "language", lang, "error", err)
		return nil
	}

	l := &language{
		words:       words,
		names:       map[string]struct{}{},
		titleTokens: map[string]struct{}{},
	}

	names, err := readFrequencyFile(filepath.Join(s.dir, "names."+lang+".txt"), "\t")
	if err != nil {
		s.log.Warnw("no name dictionary", "language", lang, "error", err)
	}
	for name := range names {
		l.names[name] = struct{}{}
	}

	titles, err := readFrequencyFile(filepath.Join(s.dir, "book_titles."+lang+".txt"), "\t")
	if err != nil {
		s.log.Warnw("no title dictionary", "language", lang, "error", err)
	}
	for title := range titles {
		l.titles = append(l.titles, title)
		for _, tok := range strings.Fields(title) {
			l.titleTokens[tok] = struct{}{}
		}
	}

	s.log.Infow("lexicon loaded",
		"language", lang,
		"words", len(l.words),
		"names", len(l.names),
		"titles", len(l.titles))

	return l
}

func readFrequencyFile(path, sep string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries := map[string]int64{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		term := line
		var freq int64
		if i := strings.LastIndex(line, sep); i > 0 {
			if n, err := strconv.ParseInt(strings.TrimSpace(line[i+len(sep):]), 10, 64); err == nil {
				term = line[:i]
				freq = n
			}
		}

		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if old, ok := entries[term]; !ok || freq > old {
			entries[term] = freq
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Correct returns the dictionary word closest to the given word within the
// edit distance threshold, with ties broken by frequency. The reported
// distance is 0 when the word is already known, -1 when no correction was
// applied (unknown language or nothing close enough).
func (s *Store) Correct(word, lang string) (string, int) {
	l := s.get(lang)
	if l == nil || word == "" {
		return word, -1
	}

	if _, ok := l.words[word]; ok {
		return word, 0
	}
	if _, ok := l.names[word]; ok {
		return word, 0
	}

	wordLen := utf8.RuneCountInString(word)
	best := ""
	bestDist := s.maxEdit + 1
	var bestFreq int64 = -1

	for candidate, freq := range l.words {
		// Length difference is a lower bound on the edit distance.
		diff := utf8.RuneCountInString(candidate) - wordLen
		if diff > s.maxEdit || diff < -s.maxEdit {
			continue
		}

		dist := levenshtein.ComputeDistance(word, candidate)
		if dist < bestDist || (dist == bestDist && freq > bestFreq) {
			best = candidate
			bestDist = dist
			bestFreq = freq
		}
	}

	if best == "" || bestDist > s.maxEdit {
		return word, -1
	}

	return best, bestDist
}

// IsKnownName reports whether the word appears verbatim in the language's
// name dictionary.
func (s *Store) IsKnownName(word, lang string) bool {
	l := s.get(lang)
	if l == nil {
		return false
	}
	_, ok := l.names[word]
	return ok
}

// IsKnownTitleToken reports whether the word occurs in any known title.
func (s *Store) IsKnownTitleToken(word, lang string) bool {
	l := s.get(lang)
	if l == nil {
		return false
	}
	_, ok := l.titleTokens[word]
	return ok
}

// ClosestTitle returns the known full title nearest to the text by edit
// distance, or ("", -1) when the language has no title dictionary.
func (s *Store) ClosestTitle(text, lang string) (string, int) {
	l := s.get(lang)
	if l == nil || len(l.titles) == 0 || text == "" {
		return "", -1
	}

	best := ""
	bestDist := -1

	for _, title := range l.titles {
		dist := levenshtein.ComputeDistance(text, title)
		if bestDist < 0 || dist < bestDist {
			best = title
			bestDist = dist
		}
	}

	return best, bestDist
}
