// Package config holds the tunable limits that bound paradigm compilation,
// derivation expansion and parsing, loadable from YAML so a grammar package
// can ship its knobs alongside its grammar files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Knobs bounds the recursive machinery in morph, derivation and parser.
// Field names and defaults are taken from the original grammar.Grammar
// class attributes.
type Knobs struct {
	// RecursLimit bounds how many times a given paradigm may appear in a
	// wordform during paradigm compilation, and how many times a recurs
	// class may repeat along a derivation chain. The parser does not read it.
	RecursLimit int `yaml:"recurs_limit"`

	// PartialCompile, when true, stops joining an inflexion with its
	// subsequent paradigms once MinFlexLength is reached instead of
	// continuing to a fully closed form.
	PartialCompile bool `yaml:"partial_compile"`
	// MinFlexLength is the length (in non-metacharacters) at which partial
	// compilation considers an inflexion long enough.
	MinFlexLength int `yaml:"min_flex_length"`
	// MaxCompileTime bounds how long compile_paradigm may run under
	// partial compilation before giving up on further extension.
	MaxCompileTime time.Duration `yaml:"max_compile_time"`

	// DerivLimit counts only non-empty derivational joins per inflexion.
	DerivLimit int `yaml:"deriv_limit"`
	// FlexLengthLimit is the hard cap on inflexion length.
	FlexLengthLimit int `yaml:"flex_length_limit"`
	// TotalDerivLimit counts every join, empty or not, across a paradigm's
	// whole compilation loop.
	TotalDerivLimit int `yaml:"total_deriv_limit"`
	// MaxDerivations is loaded and defaulted with the other knobs, but no
	// code reads it: the number of derivation models in a parsed word is
	// not bounded by it.
	MaxDerivations int `yaml:"max_derivations"`

	// MaxEmptyInflexions is loaded and defaulted with the other knobs, but
	// no code reads it: the parser does not recurse through empty
	// inflexions and is not bounded by it.
	MaxEmptyInflexions int `yaml:"max_empty_inflexions"`
	// MaxStemStartLen is the length of the non-empty stem prefix used to
	// index stems for the hash-based parsing method.
	MaxStemStartLen int `yaml:"max_stem_start_len"`
	// MaxTokenLength is the longest token (in runes) that Parser.Parse
	// analyzes; a longer token gets no analyses.
	MaxTokenLength int `yaml:"max_token_length"`
	// RememberParses caches Parser.Parse results by token string; useless
	// (and wasteful) when parsing a frequency list where each token is
	// seen once, useful for running text with repeated tokens.
	RememberParses bool `yaml:"remember_parses"`
}

// Default returns the knob set used by the original grammar.
func Default() Knobs {
	return Knobs{
		RecursLimit:        2,
		PartialCompile:     true,
		MinFlexLength:      1,
		MaxCompileTime:     60 * time.Second,
		DerivLimit:         5,
		FlexLengthLimit:    20,
		TotalDerivLimit:    10,
		MaxDerivations:     2,
		MaxEmptyInflexions: 2,
		MaxStemStartLen:    6,
		MaxTokenLength:     512,
		RememberParses:     false,
	}
}

// Load reads knobs from a YAML file, starting from Default() so a file
// may override only the fields it cares about.
func Load(path string) (Knobs, error) {
	k := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return k, err
	}
	if err := yaml.Unmarshal(data, &k); err != nil {
		return k, err
	}
	return k, nil
}
