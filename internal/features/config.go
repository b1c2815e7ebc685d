package features

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config carries the mapping tables the feature engineering needs. It is
// passed at construction and never mutated afterwards; nothing in this
// package reads process-wide state.
type Config struct {
	// ExporterMappings maps a canonical exporter name to the raw spellings
	// (misspellings and short tags) that should resolve to it.
	ExporterMappings map[string][]string `json:"exporter_mappings"`

	// ExporterCountries maps canonical exporter names to their country.
	ExporterCountries map[string]string `json:"exporter_countries"`

	// LotExporterOverrides pins specific lot ids to an exporter, winning
	// over every name heuristic.
	LotExporterOverrides map[string]string `json:"lot_exporter_overrides"`

	// KnownVarieties is the closed list of accepted variety names (upper case).
	KnownVarieties []string `json:"known_varieties"`

	// VarietyNormalization maps raw variety spellings to list entries.
	VarietyNormalization map[string]string `json:"variety_normalization"`

	// PackagingDetailPatterns maps a packaging detail label to the regex
	// that detects it in the product description.
	PackagingDetailPatterns map[string]string `json:"packaging_detail_patterns"`

	// PackagingStyleKeywords maps a packaging style to the keywords that
	// imply it when no detail pattern matches.
	PackagingStyleKeywords map[string][]string `json:"packaging_style_keywords"`
}

// LoadConfig reads mapping tables from a JSON file. Missing sections fall
// back to the built-in defaults so a mappings file only has to carry what
// it changes.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read mappings file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse mappings file %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the mapping tables of the source system.
func DefaultConfig() Config {
	return Config{
		ExporterMappings: map[string][]string{
			"Agrolatina": {"AGROLATINA", "AGRIOLATINA", "AGROALATINA", "AGROALTINA", "AGROLATIN",
				"AGROLATINAS", "AGROLATINS", "AGROLATOINA", "AGROLATRINA", "AGROLTINA", "AROLATINA"},
			"Quintay":    {"QUINTAY", "QUI", "QUITAY", "QUNITAY"},
			"Rio King":   {"RIO KING", "RK"},
			"ELC":        {"ELC"},
			"AGL":        {"AGL"},
			"ECO":        {"ECO"},
			"Del Monte":  {"DEL MONTE", "OTPU6375068 - DEL MONTE"},
			"VIDEXPORT":  {"VIDEXPORT"},
			"MDT":        {"MDT"},
			"Agrovita":   {"AGROVITA"},
			"SAFCO PERU": {"SAFCO PERU"},
			"BORQUEZ":    {"BORQUEZ"},
		},
		ExporterCountries: map[string]string{
			"Quintay": "Chile", "Rio King": "Chile", "ELC": "Chile", "MDT": "Chile",
			"Agrovita": "Chile", "Del Monte": "Chile",
			"Agrolatina": "Peru", "AGL": "Peru", "ECO": "Peru", "SAFCO PERU": "Peru",
			"BORQUEZ": "Mexico", "VIDEXPORT": "Mexico",
		},
		LotExporterOverrides: map[string]string{
			"24D6375068": "Del Monte",
			"24E04178":   "VIDEXPORT",
			"24E04179":   "VIDEXPORT",
			"24E04196":   "VIDEXPORT",
			"24E04204":   "VIDEXPORT",
			"24E04205":   "VIDEXPORT",
			"24E04206":   "VIDEXPORT",
			"24E04207":   "VIDEXPORT",
		},
		KnownVarieties: []string{
			"AUTUMN CRISP", "TIMCO", "SWEET GLOBE", "CANDY SNAP", "ALLISON", "IVORY",
			"COTTON CANDY", "CANDY DREAMS", "SWEET FAVORS", "JACK SALUTE",
			"SWEET SAPPHIRE", "AUTUMN ROYAL", "THOMPSON SDLS", "SWEETIES",
			"CRIMSON", "RED GLOBE", "MELODY", "RED SDLS", "FLAME", "TIMPSON",
			"TAWNY", "EARLY SWEET", "BI-COLOR", "CANDY HEARTS", "GREAT GREEN",
			"GREEN SEEDLESS", "HONEY POP", "KRISSY", "PASSION FIRE", "PASSION FIRE-ORG",
			"SUGAR CRISP", "SUGAR DROP", "SUGAR DROP - ORG", "SUMMER ROYAL", "SWEETCELEBRATION",
		},
		VarietyNormalization: map[string]string{
			"SWEET CELEB": "SWEETCELEBRATION",
			"THOMPSON":    "THOMPSON SDLS",
			"TIMCO CLAM":  "TIMCO",
		},
		PackagingDetailPatterns: map[string]string{
			"CLAM 6PK - #2": `CLAM\s*6PK\s*-\s*#2`,
			"CLAM 6PK - #3": `CLAM\s*6PK\s*-\s*#3`,
			"CLAM 8PK - #2": `CLAM\s*8PK\s*-\s*#2`,
			"CLAM 8PK - #3": `CLAM\s*8PK\s*-\s*#3`,
			"BAG 16#BAG":    `BAG\s*16#BAG`,
			"BAG 18#POUCH":  `BAG\s*18#POUCH`,
			"BAG 18#CLEAR":  `BAG\s*18#CLEAR`,
		},
		PackagingStyleKeywords: map[string][]string{
			"Clam": {"CLAM", "CLAMSHELL"},
			"Bag":  {"BAG", "POUCH"},
		},
	}
}
