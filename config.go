package solrq

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Operator is the default boolean operator applied between query terms (q.op)
type Operator string

const (
	// OperatorAnd requires every term to match
	OperatorAnd Operator = "AND"
	// OperatorOr requires any term to match
	OperatorOr Operator = "OR"
)

// Environment variables read by LoadConfig
const (
	EnvDefaultRows     = "SOLRQ_DEFAULT_ROWS"
	EnvDefaultOperator = "SOLRQ_DEFAULT_OPERATOR"
	EnvDefType         = "SOLRQ_DEF_TYPE"
)

// Config contains defaults applied to every QueryBuilder built from it
type Config struct {
	DefaultRows     int      // rows when Limit is not called (0: leave to Solr)
	DefaultOperator Operator // q.op (empty: leave to Solr)
	DefType         string   // query parser, e.g. "lucene" or "edismax" (empty: leave to Solr)
}

// DefaultConfig returns a Config that adds no parameters
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig reads configuration from the given .env files (".env" when none
// are given) and the process environment. Process environment wins over file
// values. Missing files are skipped.
func LoadConfig(paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	values := make(map[string]string)
	for _, path := range paths {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("No %s file found, using defaults", path)
				continue
			}
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}
	for _, key := range []string{EnvDefaultRows, EnvDefaultOperator, EnvDefType} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	config := DefaultConfig()

	if v := strings.TrimSpace(values[EnvDefaultRows]); v != "" {
		rows, err := strconv.Atoi(v)
		if err != nil || rows < 0 {
			return Config{}, invalidArgument("%s must be a non-negative integer, got %q", EnvDefaultRows, v)
		}
		config.DefaultRows = rows
	}

	if v := strings.TrimSpace(values[EnvDefaultOperator]); v != "" {
		op := Operator(strings.ToUpper(v))
		if op != OperatorAnd && op != OperatorOr {
			return Config{}, invalidArgument("%s must be AND or OR, got %q", EnvDefaultOperator, v)
		}
		config.DefaultOperator = op
	}

	config.DefType = strings.TrimSpace(values[EnvDefType])

	return config, nil
}
