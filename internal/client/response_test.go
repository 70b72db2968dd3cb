package client

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeEnvelope_Shapes tests shape classification of response bodies.
func TestDecodeEnvelope_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		idKeys []string
		want   Shape
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, want: ShapeList},
		{name: "empty array", body: `[]`, want: ShapeList},
		{name: "paginated", body: `{"items":[{"id":1}],"totalCount":10}`, want: ShapePaginated},
		{name: "single by id", body: `{"id":"7","name":"Shoes"}`, want: ShapeSingle},
		{name: "single by alias", body: `{"categoryId":7,"name":"Shoes"}`, idKeys: []string{"categoryId"}, want: ShapeSingle},
		{name: "alias of another type", body: `{"categoryId":7}`, idKeys: []string{"subCategoryId"}, want: ShapeUnrecognized},
		{name: "null id", body: `{"id":null}`, want: ShapeUnrecognized},
		{name: "wrapped list", body: `{"success":true,"data":[{"id":1}]}`, want: ShapeList},
		{name: "wrapped paginated", body: `{"success":true,"data":{"items":[],"totalCount":0}}`, want: ShapePaginated},
		{name: "wrapped failure", body: `{"success":false,"message":"nope"}`, want: ShapeWrapped},
		{name: "success without data", body: `{"success":true,"id":3}`, want: ShapeSingle},
		{name: "message only", body: `{"message":"deleted"}`, want: ShapeUnrecognized},
		{name: "scalar", body: `"hello"`, want: ShapeUnrecognized},
		{name: "empty body", body: ``, want: ShapeUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.body), tt.idKeys...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.Shape, "shape %s", env.Shape)
		})
	}
}

// TestDecodeEnvelope_InvalidJSON tests that malformed bodies are format errors.
func TestDecodeEnvelope_InvalidJSON(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"items": [`))
	assert.ErrorIs(t, err, ErrUnexpectedFormat)
}

// TestDecodeEnvelope_WrappedMatchesPayload tests that unwrapping a successful
// envelope gives the same result as decoding its data directly.
func TestDecodeEnvelope_WrappedMatchesPayload(t *testing.T) {
	payloads := []string{
		`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`,
		`{"items":[{"id":1}],"totalCount":5,"page":2,"pageSize":1,"totalPages":5}`,
		`{"categoryId":"c-1","name":"Shoes"}`,
		`{"unexpected":true}`,
	}

	for _, payload := range payloads {
		wrapped := `{"success":true,"data":` + payload + `}`

		direct, err := DecodeEnvelope([]byte(payload), "categoryId")
		require.NoError(t, err)
		unwrapped, err := DecodeEnvelope([]byte(wrapped), "categoryId")
		require.NoError(t, err)

		assert.Equal(t, direct, unwrapped, payload)
	}
}

// TestDecodeEnvelope_PaginationDefaults tests defaults for missing paging fields.
func TestDecodeEnvelope_PaginationDefaults(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"items":[{"id":1},{"id":2},{"id":3}]}`))
	require.NoError(t, err)

	list, err := env.AsList()
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.Equal(t, 3, list.TotalCount)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 3, list.PageSize)
	assert.Equal(t, 1, list.TotalPages)

	env, err = DecodeEnvelope([]byte(`{"items":[{"id":1}],"totalCount":"41","page":3,"pageSize":20,"totalPages":3}`))
	require.NoError(t, err)
	list, err = env.AsList()
	require.NoError(t, err)
	assert.Equal(t, 41, list.TotalCount)
	assert.Equal(t, 3, list.Page)
	assert.Equal(t, 20, list.PageSize)
	assert.Equal(t, 3, list.TotalPages)
}

// TestEnvelope_AsList tests list extraction for every shape.
func TestEnvelope_AsList(t *testing.T) {
	t.Run("single wrapped as one element", func(t *testing.T) {
		env, err := DecodeEnvelope([]byte(`{"id":9}`))
		require.NoError(t, err)
		list, err := env.AsList()
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.JSONEq(t, `{"id":9}`, string(list.Items[0]))
		assert.Equal(t, 1, list.TotalCount)
	})

	t.Run("failure carries backend message", func(t *testing.T) {
		env, err := DecodeEnvelope([]byte(`{"success":false,"message":"m"}`))
		require.NoError(t, err)
		_, err = env.AsList()
		require.Error(t, err)
		assert.Equal(t, "m", err.Error())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 0, apiErr.StatusCode)
		assert.Equal(t, "m", apiErr.BackendMessage)
	})

	t.Run("unrecognized", func(t *testing.T) {
		env, err := DecodeEnvelope([]byte(`{"foo":"bar"}`))
		require.NoError(t, err)
		_, err = env.AsList()
		assert.ErrorIs(t, err, ErrUnexpectedFormat)
		assert.Equal(t, "Unexpected response format from server", err.Error())
	})
}

// TestEnvelope_AsSingle tests single-entity extraction.
func TestEnvelope_AsSingle(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"success":true,"data":{"subCategoryId":4,"name":"Phones"}}`), "subCategoryId")
	require.NoError(t, err)
	entity, err := env.AsSingle()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(entity, &got))
	assert.Equal(t, "Phones", got["name"])

	env, err = DecodeEnvelope([]byte(`[{"id":1}]`))
	require.NoError(t, err)
	_, err = env.AsSingle()
	assert.ErrorIs(t, err, ErrUnexpectedFormat)
}

// TestEnvelope_FailureMessages tests message fallbacks on failed envelopes.
func TestEnvelope_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message", body: `{"success":false,"message":"Category exists"}`, want: "Category exists"},
		{name: "nested error", body: `{"success":false,"error":{"code":"CONFLICT","message":"Slug taken"}}`, want: "Slug taken"},
		{name: "no message", body: `{"success":false,"data":null}`, want: ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.body))
			require.NoError(t, err)
			require.Error(t, env.Err())
			assert.Equal(t, tt.want, env.Err().Error())
		})
	}
}

// TestExtractMessage tests backend message extraction.
func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantMsg  string
		wantCode string
	}{
		{name: "message", body: `{"message":"Name is required"}`, wantMsg: "Name is required"},
		{name: "error string", body: `{"error":"invalid token"}`, wantMsg: "invalid token"},
		{name: "error object", body: `{"success":false,"error":{"code":"NOT_FOUND","message":"Category not found"}}`, wantMsg: "Category not found", wantCode: "NOT_FOUND"},
		{name: "msg", body: `{"msg":"bad"}`, wantMsg: "bad"},
		{name: "problem details", body: `{"title":"One or more validation errors occurred.","status":400}`, wantMsg: "One or more validation errors occurred."},
		{name: "errors list", body: `{"errors":["first","second"]}`, wantMsg: "first"},
		{name: "plain text", body: `Bad Gateway`, wantMsg: "Bad Gateway"},
		{name: "empty object", body: `{}`, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, code := ExtractMessage([]byte(tt.body))
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

// TestStatusMessage tests the status to message mapping.
func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status  int
		backend string
		want    string
	}{
		{400, "x", "Invalid data provided"},
		{401, "x", "Authentication failed"},
		{403, "x", "No permission"},
		{404, "x", "Not found, may have been deleted"},
		{409, "x", "Name or slug already exists"},
		{422, "x", "Invalid data format"},
		{500, "x", "Server error, try again later"},
		{503, "", "Server error, try again later"},
		{429, "Slow down", "Slow down"},
		{418, "", "Request failed with status 418"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusMessage(tt.status, tt.backend), "status %d", tt.status)
	}
}
