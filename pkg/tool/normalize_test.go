package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_String(t *testing.T) {
	r := Normalize("hello")

	assert.True(t, r.Success)
	assert.Equal(t, "hello", r.Content)
}

func TestNormalize_Nil(t *testing.T) {
	r := Normalize(nil)

	assert.True(t, r.Success)
	assert.Equal(t, "", r.Content)
}

func TestNormalize_ResultPassThrough(t *testing.T) {
	in := Fail(CodeExecutionError, "boom")

	out := Normalize(in)

	assert.Equal(t, in, out)
}

func TestNormalize_ResultPointer(t *testing.T) {
	in := Ok("done")

	out := Normalize(&in)

	assert.Equal(t, in, out)

	var nilResult *Result
	out = Normalize(nilResult)
	assert.True(t, out.Success)
	assert.Equal(t, "", out.Content)
}

func TestNormalize_Map(t *testing.T) {
	value := map[string]interface{}{"count": 3}

	r := Normalize(value)

	assert.True(t, r.Success)
	assert.JSONEq(t, `{"count":3}`, r.Content)
	assert.Equal(t, value, r.Data)
}

func TestNormalize_Slice(t *testing.T) {
	r := Normalize([]string{"a", "b"})

	assert.True(t, r.Success)
	assert.JSONEq(t, `["a","b"]`, r.Content)
}

func TestNormalize_Struct(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	r := Normalize(payload{Name: "x"})

	assert.True(t, r.Success)
	assert.JSONEq(t, `{"name":"x"}`, r.Content)
}

func TestNormalize_Scalar(t *testing.T) {
	r := Normalize(42)

	assert.True(t, r.Success)
	assert.Equal(t, "42", r.Content)
}

func TestResult_WithDuration(t *testing.T) {
	r := Ok("done").WithDuration(5 * time.Millisecond)

	require.NotNil(t, r.Metadata)
	assert.Equal(t, 5*time.Millisecond, r.Metadata.Duration)
}

func TestResult_WithDurationKeepsMetadata(t *testing.T) {
	r := Ok("done")
	r.Metadata = &Metadata{Truncated: true, OriginalLength: 100}

	out := r.WithDuration(time.Second)

	require.NotNil(t, out.Metadata)
	assert.True(t, out.Metadata.Truncated)
	assert.Equal(t, 100, out.Metadata.OriginalLength)
	assert.Equal(t, time.Second, out.Metadata.Duration)
}

func TestFailWithDetails(t *testing.T) {
	r := FailWithDetails(CodeValidationError, "invalid", []string{"path"})

	assert.False(t, r.Success)
	require.NotNil(t, r.Error)
	assert.Equal(t, CodeValidationError, r.Error.Code)
	assert.Equal(t, []string{"path"}, r.Error.Details)
}
