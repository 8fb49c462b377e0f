package swagger

import (
	"encoding/json"
	"testing"

	"github.com/Astemirdum/library-catalog/pkg/jsonx"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDoc(t *testing.T) {
	t.Parallel()
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, jsonx.Unmarshal([]byte(doc), &parsed))
	for path, method := range map[string]string{
		"/api/books":                  "get",
		"/api/books/{id}":             "put",
		"/api/members":                "post",
		"/api/borrowings":             "post",
		"/api/borrowings/{id}/return": "post",
		"/api/stats":                  "get",
	} {
		require.Contains(t, parsed.Paths, path)
		require.Contains(t, parsed.Paths[path], method, path)
	}
}
