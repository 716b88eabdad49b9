package generate

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Local is a rule-based Generator that needs no network access. Questions
// are built from the highest-scoring sentences of the text: multiple-choice
// questions blank out a keyword, true/false statements either keep the
// sentence or swap one keyword for another. Output is deterministic for a
// given Seed.
type Local struct {
	Seed int64
}

var _ Generator = (*Local)(nil)

const (
	minSentenceWords = 5
	minKeywordRunes  = 4
	mcqOptions       = 4
	blank            = "_____"
)

var (
	sentenceEnd = regexp.MustCompile(`([.!?])\s+`)
	wordToken   = regexp.MustCompile(`\p{L}[\p{L}'-]*`)
)

var stopwords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "also": true, "because": true,
	"been": true, "before": true, "being": true, "between": true, "both": true, "could": true,
	"does": true, "doing": true, "during": true, "each": true, "from": true, "further": true,
	"have": true, "having": true, "here": true, "into": true, "itself": true, "just": true,
	"more": true, "most": true, "must": true, "only": true, "other": true, "over": true,
	"same": true, "should": true, "some": true, "such": true, "than": true, "that": true,
	"their": true, "them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "under": true, "until": true, "very": true,
	"were": true, "what": true, "when": true, "where": true, "which": true, "while": true,
	"will": true, "with": true, "would": true, "your": true, "page": true,
}

type sentence struct {
	pos   int
	text  string
	score float64
}

type analysis struct {
	sentences []sentence // ordered by score, best first
	freq      map[string]int
	keywords  []string // by frequency, best first
}

func analyze(text string) analysis {
	flat := strings.Join(strings.Fields(text), " ")
	parts := sentenceEnd.ReplaceAllString(flat, "$1\n")

	freq := make(map[string]int)
	var raw []string
	for _, s := range strings.Split(parts, "\n") {
		s = strings.TrimSpace(s)
		if len(strings.Fields(s)) < minSentenceWords {
			continue
		}
		raw = append(raw, s)
		for _, w := range wordToken.FindAllString(s, -1) {
			if isKeyword(w) {
				freq[strings.ToLower(w)]++
			}
		}
	}

	a := analysis{freq: freq}
	for i, s := range raw {
		words := wordToken.FindAllString(s, -1)
		total := 0
		for _, w := range words {
			total += freq[strings.ToLower(w)]
		}
		score := 0.0
		if len(words) > 0 {
			score = float64(total) / float64(len(words))
		}
		a.sentences = append(a.sentences, sentence{pos: i, text: s, score: score})
	}
	sort.SliceStable(a.sentences, func(i, j int) bool { return a.sentences[i].score > a.sentences[j].score })

	for w := range freq {
		a.keywords = append(a.keywords, w)
	}
	sort.Slice(a.keywords, func(i, j int) bool {
		if freq[a.keywords[i]] != freq[a.keywords[j]] {
			return freq[a.keywords[i]] > freq[a.keywords[j]]
		}
		return a.keywords[i] < a.keywords[j]
	})
	return a
}

func isKeyword(w string) bool {
	return utf8.RuneCountInString(w) >= minKeywordRunes && !stopwords[strings.ToLower(w)]
}

// pickKeyword returns the most frequent keyword of s and the byte range of
// its first occurrence.
func (a analysis) pickKeyword(s string) (word string, start, end int, ok bool) {
	best := -1
	for _, loc := range wordToken.FindAllStringIndex(s, -1) {
		w := s[loc[0]:loc[1]]
		if !isKeyword(w) {
			continue
		}
		if f := a.freq[strings.ToLower(w)]; f > best {
			best, word, start, end = f, w, loc[0], loc[1]
		}
	}
	return word, start, end, best >= 0
}

// distractors returns up to n keywords not present in s and different from
// answer.
func (a analysis) distractors(s, answer string, n int) []string {
	present := make(map[string]bool)
	for _, w := range wordToken.FindAllString(s, -1) {
		present[strings.ToLower(w)] = true
	}
	var out []string
	for _, k := range a.keywords {
		if len(out) == n {
			break
		}
		if present[k] || strings.EqualFold(k, answer) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (g *Local) MCQ(_ context.Context, text string, n int) (string, error) {
	a := analyze(text)
	rng := rand.New(rand.NewSource(g.Seed))

	var blocks []string
	for _, s := range a.sentences {
		if len(blocks) == n {
			break
		}
		word, start, end, ok := a.pickKeyword(s.text)
		if !ok {
			continue
		}
		wrong := a.distractors(s.text, word, mcqOptions-1)
		if len(wrong) == 0 {
			continue
		}
		options := append([]string{matchCase(word, word)}, casedLike(word, wrong)...)
		rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

		var b strings.Builder
		fmt.Fprintf(&b, "Fill in the blank: %s%s%s\n", s.text[:start], blank, s.text[end:])
		answer := ""
		for i, o := range options {
			label := string(rune('a'+i)) + ")"
			fmt.Fprintf(&b, "%s %s\n", label, o)
			if o == word {
				answer = label + " " + o
			}
		}
		fmt.Fprintf(&b, "Answer: %s", answer)
		blocks = append(blocks, b.String())
	}
	if len(blocks) == 0 {
		return "", ErrInsufficientText
	}
	return strings.Join(blocks, "\n\n"), nil
}

func (g *Local) TrueFalse(_ context.Context, text string, n int) (string, error) {
	a := analyze(text)
	rng := rand.New(rand.NewSource(g.Seed))

	var blocks []string
	for _, s := range a.sentences {
		if len(blocks) == n {
			break
		}
		statement, answer := s.text, "True"
		if rng.Intn(2) == 0 {
			if word, start, end, ok := a.pickKeyword(s.text); ok {
				if swap := a.distractors(s.text, word, 1); len(swap) == 1 {
					statement = s.text[:start] + casedLike(word, swap)[0] + s.text[end:]
					answer = "False"
				}
			}
		}
		blocks = append(blocks, statement+"\nAnswer: "+answer)
	}
	if len(blocks) == 0 {
		return "", ErrInsufficientText
	}
	return strings.Join(blocks, "\n\n"), nil
}

func (g *Local) Summarize(_ context.Context, text string, sentences int) (string, error) {
	a := analyze(text)
	if len(a.sentences) == 0 {
		return "", ErrInsufficientText
	}
	top := a.sentences
	if len(top) > sentences {
		top = top[:sentences]
	}
	picked := append([]sentence(nil), top...)
	sort.Slice(picked, func(i, j int) bool { return picked[i].pos < picked[j].pos })

	out := make([]string, len(picked))
	for i, s := range picked {
		out[i] = s.text
	}
	return strings.Join(out, " "), nil
}

// casedLike capitalises each word when ref starts with an upper-case letter.
func casedLike(ref string, words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = matchCase(ref, w)
	}
	return out
}

func matchCase(ref, w string) string {
	r, _ := utf8.DecodeRuneInString(ref)
	if r == utf8.RuneError || strings.ToUpper(string(r)) != string(r) {
		return w
	}
	first, size := utf8.DecodeRuneInString(w)
	return strings.ToUpper(string(first)) + w[size:]
}
