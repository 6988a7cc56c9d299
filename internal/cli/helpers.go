package cli

import (
	"github.com/tdzio/tdz/internal/embedding"
	"github.com/tdzio/tdz/internal/index"
	"github.com/tdzio/tdz/internal/ingest"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/store"
)

// env bundles the store, index, and pipeline objects a command needs.
// Commands that only read the store can ignore the rest.
type env struct {
	st       *store.Store
	idx      *index.Index
	engine   *search.Engine
	facade   *ingest.Facade
	embedder embedding.Embedder
}

// openEnv opens the store and index at the resolved root and wires
// change events through to the index.
func openEnv() (*env, error) {
	st, err := store.Open(getRoot())
	if err != nil {
		return nil, err
	}

	idx, err := index.Open(st.Root())
	if err != nil {
		st.Close()
		return nil, err
	}
	st.Notify(func(ev store.ChangeEvent) {
		// Index lag is recoverable via 'tdz reindex'; writes never block on it.
		_ = idx.Apply(st, ev)
	})

	embedder, err := embedding.New(embeddingSettings())
	if err != nil {
		idx.Close()
		st.Close()
		return nil, err
	}

	engine := search.New(st, idx, embedder, getConfig().Search.Threshold)

	opts := []ingest.Option{ingest.WithSearch(engine)}
	if embedder != nil {
		opts = append(opts, ingest.WithEmbedder(embedder))
	}
	facade := ingest.New(st, opts...)

	return &env{st: st, idx: idx, engine: engine, facade: facade, embedder: embedder}, nil
}

func (e *env) Close() {
	e.idx.Close()
	e.st.Close()
}

func embeddingSettings() embedding.Settings {
	ec := getConfig().Embedding
	return embedding.Settings{
		Provider:  ec.Provider,
		Model:     ec.Model,
		BaseURL:   ec.BaseURL,
		APIKey:    ec.APIKey,
		CacheSize: ec.CacheSize,
	}
}

// searchLimit returns the configured default result limit, or zero to
// let the engine apply its own default.
func searchLimit() int {
	return getConfig().Search.Limit
}
