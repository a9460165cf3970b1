package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbserve/jupyter-mcp/internal/errors"
)

func TestParseSimpleRequest(t *testing.T) {
	req, err := Parse("$method:run_cell\n$pram:cell_index\n2\n")
	require.NoError(t, err)

	assert.Equal(t, "run_cell", req.Method)
	assert.Equal(t, Params{"cell_index": "2"}, req.Params)
}

func TestParseMultilineValue(t *testing.T) {
	text := "$method:insert_cell\n" +
		"$pram:source\n" +
		"def f():\n" +
		"    return 1\n" +
		"$pram:cell_type\n" +
		"code\n"

	req, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, "def f():\n    return 1", req.Params["source"])
	assert.Equal(t, "code", req.Params["cell_type"])
}

func TestParseNoneDropsParameter(t *testing.T) {
	req, err := Parse("$method:insert_cell\n$pram:source\nx = 1\n$pram:index\nNone\n")
	require.NoError(t, err)

	_, ok := req.Params["index"]
	assert.False(t, ok, "a literal None value marks the parameter absent")
	assert.Equal(t, "x = 1", req.Params["source"])
}

func TestParseEmptyValueIsEmptyString(t *testing.T) {
	req, err := Parse("$method:set_slide_type\n$pram:slide_type\n$pram:cell_index\n0\n")
	require.NoError(t, err)

	v, ok := req.Params["slide_type"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestParseIgnoresLinesOutsideParameters(t *testing.T) {
	req, err := Parse("noise before\n$method:list_cells\nnoise after method\n")
	require.NoError(t, err)

	assert.Equal(t, "list_cells", req.Method)
	assert.Empty(t, req.Params)
}

func TestParseTrimsPrefixWhitespace(t *testing.T) {
	req, err := Parse("$method:  run_cell  \n$pram:  cell_index \n 3 \n")
	require.NoError(t, err)

	assert.Equal(t, "run_cell", req.Method)
	assert.Equal(t, "3", req.Params["cell_index"])
}

func TestParseWithoutMethodFails(t *testing.T) {
	_, err := Parse("$pram:cell_index\n1\n")
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = Parse("")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestParamsInt(t *testing.T) {
	p := Params{"n": "42", "bad": "x"}

	n, err := p.Int("n")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = p.Int("bad")
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = p.Int("missing")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestParamsIntOrAndOptionalInt(t *testing.T) {
	p := Params{"offset": "7"}

	v, err := p.IntOr("offset", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = p.IntOr("limit", 3000)
	require.NoError(t, err)
	assert.Equal(t, 3000, v)

	idx, err := p.OptionalInt("index")
	require.NoError(t, err)
	assert.Nil(t, idx)

	idx, err = p.OptionalInt("offset")
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, 7, *idx)
}

func TestParamsIntList(t *testing.T) {
	p := Params{
		"json":   "[0, 1, 3]",
		"python": "['not', 'ints']",
		"empty":  "[]",
	}

	vals, err := p.IntList("json")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, vals)

	vals, err = p.IntList("empty")
	require.NoError(t, err)
	assert.Empty(t, vals)

	_, err = p.IntList("python")
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = p.IntList("missing")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestParamsEnumFallsBackToFirst(t *testing.T) {
	p := Params{"cell_type": "markdown", "other": "raw"}

	assert.Equal(t, "markdown", p.Enum("cell_type", "code", "markdown"))
	assert.Equal(t, "code", p.Enum("other", "code", "markdown"))
	assert.Equal(t, "code", p.Enum("missing", "code", "markdown"))
}
