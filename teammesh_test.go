package teammesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hupe1980/teammesh/artifact"
	"github.com/hupe1980/teammesh/config"
	"github.com/hupe1980/teammesh/engine"
	"github.com/hupe1980/teammesh/logging"
	"github.com/hupe1980/teammesh/model"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/topology"
)

const soloTeam = `
name: desk
supervisor:
  model: mock/boss
members:
  - name: writer
    description: Writes things.
    model: mock/writer
`

func newSolo(t *testing.T, optFns ...func(o *Options)) (*Mesh, *model.MockModel, *model.MockModel) {
	t.Helper()

	team, err := topology.Parse([]byte(soloTeam))
	require.NoError(t, err)

	boss := model.NewMockModel("boss", "mock")
	writer := model.NewMockModel("writer", "mock")
	models := map[string]model.Model{"mock/boss": boss, "mock/writer": writer}

	fns := append([]func(o *Options){func(o *Options) {
		o.Logger = logging.NoOpLogger{}
		o.Models = topology.ResolverFunc(func(id string) (model.Model, error) {
			return models[id], nil
		})
	}}, optFns...)

	m, err := New(team, fns...)
	require.NoError(t, err)
	return m, boss, writer
}

func TestMesh_Respond(t *testing.T) {
	rec := observe.NewRecorder()
	m, boss, writer := newSolo(t, func(o *Options) { o.Observer = rec })

	boss.EnqueueText("writer", "END")
	writer.EnqueueText("a short poem")

	res, err := m.Respond(context.Background(), "write a poem", 0)
	require.NoError(t, err)

	assert.Equal(t, engine.TerminatedBySupervisor, res.Reason)
	assert.Equal(t, []string{"desk_supervisor", "writer", "desk_supervisor", "END"}, res.Trace)

	latest, ok := res.Latest()
	require.True(t, ok)
	assert.Equal(t, "writer", latest.Origin)
	assert.Equal(t, "a short poem", latest.Text())

	assert.Len(t, rec.Decisions(), 2)
	assert.Equal(t, "desk", m.Team().Name)
	assert.Equal(t, "desk", m.Graph().Name)
}

func TestNew_Defaults(t *testing.T) {
	m, _, _ := newSolo(t)

	assert.IsType(t, &artifact.InMemoryStore{}, m.ArtifactStore())
	assert.Nil(t, m.opts.Observer)
	assert.Equal(t, engine.DefaultConfig, m.Engine().Config())
}

func TestNew_ArtifactDir(t *testing.T) {
	cfg := config.Default()
	cfg.Artifacts.Dir = t.TempDir()

	m, _, _ := newSolo(t, func(o *Options) { o.Config = cfg })

	store, ok := m.ArtifactStore().(*artifact.DirStore)
	require.True(t, ok)
	assert.Equal(t, cfg.Artifacts.Dir, store.Root())
}

func TestNew_TracingWrapsObserver(t *testing.T) {
	cfg := config.Default()
	cfg.Tracing.Enabled = true

	m, _, _ := newSolo(t, func(o *Options) { o.Config = cfg })
	assert.IsType(t, &observe.OTel{}, m.opts.Observer)

	rec := observe.NewRecorder()
	m, _, _ = newSolo(t, func(o *Options) {
		o.Config = cfg
		o.Observer = rec
	})
	multi, ok := m.opts.Observer.(observe.Multi)
	require.True(t, ok)
	assert.Len(t, multi, 2)
	assert.Same(t, rec, multi[1])
}

func TestMesh_RespondRecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := config.Default()
	cfg.Tracing.Enabled = true

	m, boss, writer := newSolo(t, func(o *Options) {
		o.Config = cfg
		o.TracerProvider = tp
	})
	boss.EnqueueText("writer", "END")
	writer.EnqueueText("a short poem")

	_, err := m.Respond(context.Background(), "write a poem", 0)
	require.NoError(t, err)

	spans := sr.Ended()
	names := make([]string, 0, len(spans))
	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		names = append(names, s.Name())
		byName[s.Name()] = s
	}
	assert.ElementsMatch(t, []string{"actor writer", "orchestrator desk"}, names)

	root, step := byName["orchestrator desk"], byName["actor writer"]
	require.NotNil(t, root)
	require.NotNil(t, step)
	assert.Equal(t, root.SpanContext().TraceID(), step.SpanContext().TraceID())
	assert.Equal(t, root.SpanContext().SpanID(), step.Parent().SpanID())
	assert.Equal(t, observe.TracerName, root.InstrumentationScope().Name)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	cfg := config.Default()
	cfg.Run.StepBudget = cfg.Run.Budget

	team, err := topology.Parse([]byte(soloTeam))
	require.NoError(t, err)

	_, err = New(team, func(o *Options) { o.Config = cfg })
	require.Error(t, err)
}
