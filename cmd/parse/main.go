// Command parse runs the analyzer over a word-frequency list or a plain
// text file, emitting one XML <w> element per token, the Russian National
// Corpus convention the grammar's wordform XML serialization targets.
//
// A frequency-list line is "word<sep>freq"; a text file is split on
// whitespace and punctuation. Both modes write parsed tokens to -out and
// anything left unparsed to -unparsed, and report the overall parse rate.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/timarkh/uniparser-grammar-udm/grammar"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/internal/yamltree"
	"github.com/timarkh/uniparser-grammar-udm/morph"
	"github.com/timarkh/uniparser-grammar-udm/parser"
)

var rxTokenSearch = regexp.MustCompile(`[\p{L}\p{N}]+|[^\s\p{L}\p{N}]`)

func main() {
	dataDir := flag.String("data", "data", "path to the grammar's YAML descriptor files")
	inPath := flag.String("in", "", "input file (frequency list or plain text)")
	outPath := flag.String("out", "parsed.xml", "output file for parsed tokens")
	unparsedPath := flag.String("unparsed", "unparsed.txt", "output file for unparsed tokens")
	freqList := flag.Bool("freq-list", false, "treat -in as a word<TAB>freq frequency list instead of running text")
	sep := flag.String("sep", "\t", "field separator for -freq-list mode")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *inPath == "" {
		log.Fatal().Msg("-in is required")
	}

	sink := &errs.Collector{}
	g := grammar.New(sink, log)
	loadGrammar(g, *dataDir)
	g.Compile()
	for _, e := range sink.Errors() {
		log.Warn().Msg(e.String())
	}

	// Running text repeats tokens far more than a frequency list does, so
	// caching only pays off there; a frequency list is already deduped by
	// construction. parser.New reads the knob, so it is set first.
	g.Knobs.RememberParses = !*freqList
	p := parser.New(g, parser.MethodHash)

	var tokens []string
	var freqs map[string]int
	if *freqList {
		tokens, freqs = readFreqList(*inPath, *sep, log)
	} else {
		tokens = readText(*inPath, log)
	}

	results, err := parser.ParseTokens(context.Background(), p, tokens)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing failed")
	}

	if *freqList {
		sort.SliceStable(results, func(i, j int) bool {
			return freqs[results[i].Token] > freqs[results[j].Token]
		})
	}

	rate := writeResults(results, *outPath, *unparsedPath, log)
	log.Info().Float64("parse_rate", rate).Int("tokens", len(tokens)).Msg("done")
}

func loadGrammar(g *grammar.Grammar, dataDir string) {
	if nodes, err := yamltree.Load(dataDir + "/stem-conversions.yaml"); err == nil {
		g.LoadStemConversions(nodes)
	}
	if nodes, err := yamltree.Load(dataDir + "/paradigms.yaml"); err == nil {
		g.LoadParadigms(nodes)
	}
	if nodes, err := yamltree.Load(dataDir + "/lexemes.yaml"); err == nil {
		g.LoadLexemes(nodes)
	}
	if nodes, err := yamltree.Load(dataDir + "/lex-rules.yaml"); err == nil {
		g.LoadLexRules(nodes)
	}
	if nodes, err := yamltree.Load(dataDir + "/clitics.yaml"); err == nil {
		g.LoadClitics(nodes)
	}
	if nodes, err := yamltree.Load(dataDir + "/derivations.yaml"); err == nil {
		g.LoadDerivations(nodes)
	}
}

func readFreqList(path, sep string, log zerolog.Logger) ([]string, map[string]int) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open input")
	}
	defer f.Close()

	var tokens []string
	freqs := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, sep, 2)
		if len(parts) == 0 || parts[0] == "" {
			continue
		}
		word := parts[0]
		freq := 0
		if len(parts) == 2 {
			freq, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
		}
		tokens = append(tokens, word)
		freqs[word] = freq
	}
	return tokens, freqs
}

func readText(path string, log zerolog.Logger) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open input")
	}
	return rxTokenSearch.FindAllString(string(data), -1)
}

func writeResults(results []parser.TokenResult, outPath, unparsedPath string, log zerolog.Logger) float64 {
	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create output file")
	}
	defer out.Close()
	unparsed, err := os.Create(unparsedPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create unparsed file")
	}
	defer unparsed.Close()

	parsedCount := 0
	for _, r := range results {
		if len(r.Results) == 0 {
			fmt.Fprintln(unparsed, r.Token)
			continue
		}
		parsedCount++
		var b strings.Builder
		for _, wf := range r.Results {
			b.WriteString(anaToXML(wf, r.Token))
		}
		b.WriteString(r.Token)
		fmt.Fprintf(out, "<w>%s</w>\n", b.String())
	}
	if len(results) == 0 {
		return 0
	}
	return float64(parsedCount) / float64(len(results))
}

func anaToXML(wf *morph.Wordform, token string) string {
	return wf.ToXML(wf.Lemma, token)
}
