package factory

import (
	"fmt"

	"Go2NetWatch/internal/config"
	"Go2NetWatch/internal/model"

	log "github.com/sirupsen/logrus"
)

// Deps carries the runtime collaborators a writer may need.
type Deps struct {
	History model.HistorySource
}

// WriterFactory defines a function that creates a writer from its definition.
type WriterFactory func(def config.WriterDef, deps Deps) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Registered reports whether a writer type is known.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// CreateWriters creates every enabled writer in the config. On failure the
// writers created so far are closed.
func CreateWriters(cfg *config.Config, deps Deps) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		log.Printf("Creating writer of type '%s'", def.Type)

		factory, ok := registry[def.Type]
		if !ok {
			closeAll(writers)
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		w, err := factory(def, deps)
		if err != nil {
			closeAll(writers)
			return nil, fmt.Errorf("error creating writer '%s': %w", def.Type, err)
		}
		writers = append(writers, w)
	}

	return writers, nil
}

func closeAll(writers []model.Writer) {
	for _, w := range writers {
		if err := w.Close(); err != nil {
			log.Warnf("Error closing writer: %v", err)
		}
	}
}
