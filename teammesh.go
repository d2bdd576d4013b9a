// Package teammesh is the high-level façade for running hierarchical agent
// teams. Most applications:
//  1. Describe a team tree in a topology file (see package topology)
//  2. Create a Mesh via Load or New, optionally overriding providers,
//     tools, observers, stores and the logger
//  3. Call Respond with a query and read the final Result
//
// The façade wires configuration into the engine tree: budgets and the
// supervisor retry policy come from config.Config, models are resolved by
// topology.Providers, artifacts go to a directory when one is configured,
// and OpenTelemetry spans are emitted when tracing is enabled.
package teammesh

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/teammesh/artifact"
	"github.com/hupe1980/teammesh/config"
	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/engine"
	"github.com/hupe1980/teammesh/logging"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/tool"
	"github.com/hupe1980/teammesh/topology"
)

// Options configures a Mesh.
type Options struct {
	// Config supplies budgets, retry policy, credentials and defaults for
	// the remaining options. Defaults to config.Default().
	Config *config.Config

	// Models resolves model ids. Defaults to topology.NewProviders(Config).
	Models topology.ModelResolver

	// Tools are made available to workers in addition to the builtin
	// artifact tools.
	Tools []tool.Tool

	// Observer receives run events. When tracing is enabled it is combined
	// with an OpenTelemetry observer.
	Observer observe.Observer

	// ArtifactStore backs top-level runs. Defaults to a directory store when
	// Config.Artifacts.Dir is set, otherwise to an in-memory store.
	ArtifactStore core.ArtifactStore

	// Logger defaults to a structured logger built from Config.Log.
	Logger logging.Logger

	// TracerProvider records the spans emitted when Config.Tracing is
	// enabled. Defaults to the global provider; use
	// observe.NewTracerProvider to export them.
	TracerProvider trace.TracerProvider
}

// Mesh is a built team tree ready to answer queries. It is safe for
// concurrent use.
type Mesh struct {
	opts   Options
	team   *topology.Team
	engine *engine.Engine
}

// Load reads a topology file and builds a Mesh from it.
func Load(path string, optFns ...func(o *Options)) (*Mesh, error) {
	team, err := topology.Load(path)
	if err != nil {
		return nil, err
	}
	return New(team, optFns...)
}

// New builds a Mesh for team.
func New(team *topology.Team, optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if team == nil {
		return nil, fmt.Errorf("teammesh: team is required")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("teammesh: %w", err)
	}
	if opts.Models == nil {
		opts.Models = topology.NewProviders(opts.Config)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(opts.Config.LoggerConfig())
	}
	if opts.ArtifactStore == nil {
		store, err := newArtifactStore(opts.Config)
		if err != nil {
			return nil, err
		}
		opts.ArtifactStore = store
	}
	opts.Observer = newObserver(opts.Config, opts.TracerProvider, opts.Observer)

	eng, err := topology.Build(team, topology.Deps{
		Models:        opts.Models,
		Tools:         opts.Tools,
		Config:        opts.Config.EngineConfig(),
		Retry:         opts.Config.RetryPolicy(),
		Observer:      opts.Observer,
		ArtifactStore: opts.ArtifactStore,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Mesh{opts: opts, team: team, engine: eng}, nil
}

func newArtifactStore(cfg *config.Config) (core.ArtifactStore, error) {
	if cfg.Artifacts.Dir == "" {
		return artifact.NewInMemoryStore(), nil
	}
	store, err := artifact.NewDirStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, fmt.Errorf("teammesh: artifacts: %w", err)
	}
	return store, nil
}

func newObserver(cfg *config.Config, tp trace.TracerProvider, custom observe.Observer) observe.Observer {
	if !cfg.Tracing.Enabled {
		return custom
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	tracer := observe.NewOTel(func(o *observe.OTelOptions) {
		o.Tracer = tp.Tracer(observe.TracerName)
	})
	if custom == nil {
		return tracer
	}
	return observe.Multi{tracer, custom}
}

// Respond answers query with the root team. A runBudget below 1 uses the
// configured run budget.
func (m *Mesh) Respond(ctx context.Context, query string, runBudget int) (*engine.Result, error) {
	return m.engine.Respond(ctx, query, runBudget)
}

// Engine returns the root orchestrator.
func (m *Mesh) Engine() *engine.Engine { return m.engine }

// Team returns the topology the mesh was built from.
func (m *Mesh) Team() *topology.Team { return m.team }

// Graph returns the run graph of the whole tree.
func (m *Mesh) Graph() *engine.Graph { return m.engine.Graph() }

// ArtifactStore returns the store backing top-level runs.
func (m *Mesh) ArtifactStore() core.ArtifactStore { return m.opts.ArtifactStore }
