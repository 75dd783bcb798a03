// Command server exposes the morphological analyzer as a JSON REST API.
//
// Endpoints:
//
//	GET /api/parse?token=<word>
//	GET /api/paradigm/{name}
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/timarkh/uniparser-grammar-udm/grammar"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/internal/yamltree"
	"github.com/timarkh/uniparser-grammar-udm/parser"
)

type wordformJSON struct {
	WF        string      `json:"wf"`
	WFGlossed string      `json:"wf_glossed"`
	Gloss     string      `json:"gloss"`
	Gramm     string      `json:"gramm"`
	Lemma     string      `json:"lemma"`
	OtherData [][2]string `json:"other_data,omitempty"`
}

type parseResponse struct {
	Token    string         `json:"token"`
	Analyses []wordformJSON `json:"analyses"`
}

type paradigmResponse struct {
	Name           string `json:"name"`
	InflexionCount int    `json:"inflexion_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string, log zerolog.Logger) {
	writeJSON(w, status, errorResponse{Error: msg}, log)
}

func handleParse(p *parser.Parser, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required", log)
			return
		}
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusBadRequest, "missing 'token' query parameter", log)
			return
		}
		results := p.Parse(token)
		analyses := make([]wordformJSON, 0, len(results))
		for _, wf := range results {
			analyses = append(analyses, wordformJSON{
				WF:        wf.WF,
				WFGlossed: wf.WFGlossed,
				Gloss:     wf.Gloss,
				Gramm:     wf.Gramm,
				Lemma:     wf.Lemma,
				OtherData: wf.OtherData,
			})
		}
		status := http.StatusOK
		if len(analyses) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, parseResponse{Token: token, Analyses: analyses}, log)
	}
}

func handleParadigm(g *grammar.Grammar, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required", log)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/api/paradigm/")
		p, ok := g.Paradigm(name)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown paradigm: "+name, log)
			return
		}
		writeJSON(w, http.StatusOK, paradigmResponse{Name: p.Name, InflexionCount: len(p.Inflexions)}, log)
	}
}

func main() {
	dataDir := flag.String("data", "data", "path to the grammar's YAML descriptor files")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	sink := &errs.Collector{}

	g := grammar.New(sink, log)
	loadGrammar(g, *dataDir, log)
	g.Compile()
	for _, e := range sink.Errors() {
		log.Warn().Msg(e.String())
	}

	p := parser.New(g, parser.MethodHash)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/parse", handleParse(p, log))
	mux.HandleFunc("/api/paradigm/", handleParadigm(g, log))

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)

	log.Info().Str("addr", *addr).Msg("listening")
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// loadGrammar reads every YAML file under dataDir expected by the
// grammar's component kinds (paradigms.yaml, lexemes.yaml, ...) and feeds
// the resulting descriptor trees to g. A missing file is skipped, not
// fatal: a grammar under active development may not have every kind yet.
func loadGrammar(g *grammar.Grammar, dataDir string, log zerolog.Logger) {
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
	log.Info().Str("dir", dataDir).Msg("loaded grammar descriptor files")
}
