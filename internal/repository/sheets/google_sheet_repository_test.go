package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/mamadbah2/stockroom/internal/config"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *GoogleSheetRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo, err := NewGoogleSheetRepository(context.Background(),
		config.SheetsConfig{SpreadsheetID: "sheet-id"},
		nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return repo
}

func TestWriteRowAppendsValues(t *testing.T) {
	var (
		gotPath string
		gotBody struct {
			Values [][]interface{} `json:"values"`
		}
		gotQuery string
	)
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id"}`))
	})

	err := repo.WriteRow(context.Background(), ReportsRange, []interface{}{"2024-05-17T20:00:00Z", 2, 7, 21.5})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-id/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")
	require.Len(t, gotBody.Values, 1)
	assert.Equal(t, []interface{}{"2024-05-17T20:00:00Z", 2.0, 7.0, 21.5}, gotBody.Values[0])
}

func TestWriteRowSurfacesAPIErrors(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	err := repo.WriteRow(context.Background(), ReportsRange, []interface{}{"x"})
	assert.Error(t, err)
}

func TestWriteRowRequiresRange(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	assert.Error(t, repo.WriteRow(context.Background(), "", nil))
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{}, nil)
	assert.Error(t, err)
}
