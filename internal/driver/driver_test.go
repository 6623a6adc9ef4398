package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/mutator"
	"github.com/dbsmedya/gomutate/internal/schema"
)

const driverSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 32},
		"age": {"type": "integer", "minimum": 0, "maximum": 120},
		"tags": {"type": "array", "items": {"type": "string"}, "maxItems": 4},
		"meta": {
			"type": "object",
			"properties": {"rank": {"type": "number", "minimum": 0}}
		}
	},
	"required": ["name", "age"]
}`

const driverSample = `{"name":"ada","age":30,"tags":["x"],"meta":{"rank":1.5}}`

func parseFixture(t *testing.T) (*schema.Node, *mutator.Sample) {
	t.Helper()
	node, err := schema.Parse([]byte(driverSchema))
	require.NoError(t, err)
	value, err := jsonval.Decode([]byte(driverSample))
	require.NoError(t, err)
	return node, mutator.Bind(node, value)
}

func newTestDriver(t *testing.T, opts Options) *Driver {
	t.Helper()
	node, sample := parseFixture(t)
	d, err := New(node, sample, opts, nil)
	require.NoError(t, err)
	return d
}

func mustMarshal(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := jsonval.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestNew_RequiresSchemaAndSample(t *testing.T) {
	node, sample := parseFixture(t)

	_, err := New(nil, sample, Options{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")

	_, err = New(node, nil, Options{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample")
}

func TestNew_HonorsConfiguredSeed(t *testing.T) {
	d := newTestDriver(t, Options{Seed: 42, SeedSet: true})
	assert.Equal(t, int64(42), d.Seed())

	// Zero is a valid configured seed, not a request for derivation.
	d = newTestDriver(t, Options{Seed: 0, SeedSet: true})
	assert.Equal(t, int64(0), d.Seed())
}

func TestNew_DerivesSeedWhenUnset(t *testing.T) {
	d := newTestDriver(t, Options{})
	assert.NotZero(t, d.Seed(), "derived seed comes from the clock")
}

func TestNew_AssignsRunID(t *testing.T) {
	a := newTestDriver(t, Options{Seed: 1, SeedSet: true})
	b := newTestDriver(t, Options{Seed: 1, SeedSet: true})

	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID(), "run identity is unique even for equal seeds")
}

func TestNew_NormalizesWorkersAndQueue(t *testing.T) {
	d := newTestDriver(t, Options{Seed: 1, SeedSet: true})
	assert.Equal(t, 1, d.opts.Workers)
	assert.Equal(t, defaultQueueSize, d.opts.QueueSize)
}
