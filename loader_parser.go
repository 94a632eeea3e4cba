package insights

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	internalLoader "github.com/goliatone/go-workforce-insights/internal/contract/loader"
	internalParser "github.com/goliatone/go-workforce-insights/internal/contract/parser"
	internalValidator "github.com/goliatone/go-workforce-insights/internal/contract/validator"
	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

// NewLoader constructs a contract loader while keeping the concrete type
// hidden from consumers.
func NewLoader(options ...pkgcontract.LoaderOption) pkgcontract.Loader {
	cfg := pkgcontract.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs a contract parser backed by kin-openapi.
func NewParser(options ...pkgcontract.ParserOption) pkgcontract.Parser {
	cfg := pkgcontract.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// ContractOption customises LoadContracts.
type ContractOption func(*contractConfig)

type contractConfig struct {
	files         fs.FS
	sources       []pkgcontract.Source
	loaderOptions []pkgcontract.LoaderOption
	parserOptions []pkgcontract.ParserOption
}

// WithContractFS replaces the bundled contracts with documents from files.
// The default file names are expected unless WithContractSources is used.
func WithContractFS(files fs.FS) ContractOption {
	return func(cfg *contractConfig) {
		if files != nil {
			cfg.files = files
		}
	}
}

// WithContractSources loads the listed sources instead of the bundled file
// names. URL sources require WithContractLoaderOptions enabling HTTP.
func WithContractSources(sources ...pkgcontract.Source) ContractOption {
	return func(cfg *contractConfig) {
		cfg.sources = append(cfg.sources, sources...)
	}
}

// WithContractLoaderOptions forwards options to the contract loader.
func WithContractLoaderOptions(options ...pkgcontract.LoaderOption) ContractOption {
	return func(cfg *contractConfig) {
		cfg.loaderOptions = append(cfg.loaderOptions, options...)
	}
}

// WithContractParserOptions forwards options to the parser and validator.
func WithContractParserOptions(options ...pkgcontract.ParserOption) ContractOption {
	return func(cfg *contractConfig) {
		cfg.parserOptions = append(cfg.parserOptions, options...)
	}
}

// LoadContracts loads, parses and indexes every contract document and returns
// the merged set used for form building and payload validation.
func LoadContracts(ctx context.Context, options ...ContractOption) (*pkgcontract.Set, error) {
	cfg := &contractConfig{files: ContractsFS()}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	sources := cfg.sources
	if len(sources) == 0 {
		for _, name := range ContractFiles() {
			sources = append(sources, pkgcontract.SourceFromFS(name))
		}
	}
	if len(sources) == 0 {
		return nil, errors.New("insights: no contract sources configured")
	}

	loaderOptions := append([]pkgcontract.LoaderOption{pkgcontract.WithFileSystem(cfg.files)}, cfg.loaderOptions...)
	loader := NewLoader(loaderOptions...)
	parser := NewParser(cfg.parserOptions...)
	validator := internalValidator.New(pkgcontract.NewParserOptions(cfg.parserOptions...))

	groups := make([]map[string]pkgcontract.Operation, 0, len(sources))
	for _, src := range sources {
		doc, err := loader.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("insights: load contract: %w", err)
		}
		operations, err := parser.Operations(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("insights: parse contract: %w", err)
		}
		if err := validator.Add(ctx, doc); err != nil {
			return nil, fmt.Errorf("insights: index contract: %w", err)
		}
		groups = append(groups, operations)
	}

	return pkgcontract.NewSet(validator, groups...)
}

// MustLoadContracts panics when the contracts cannot be loaded. Intended for
// the bundled documents, which are known to be valid.
func MustLoadContracts(ctx context.Context, options ...ContractOption) *pkgcontract.Set {
	set, err := LoadContracts(ctx, options...)
	if err != nil {
		panic(err)
	}
	return set
}
