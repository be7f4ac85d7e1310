package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silpodev/silpo-scraper/internal/discovery"
)

func testTemplate(body map[string]any) *discovery.Template {
	return &discovery.Template{
		Endpoint: "https://" + discovery.EndpointSubstr,
		Method:   "POST",
		Headers: map[string]string{
			"accept":       "application/json",
			"content-type": "application/json",
		},
		Cookies: map[string]string{"sid": "abc"},
		Body:    body,
	}
}

func TestWithPage(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		page int
		want func(t *testing.T, out map[string]any)
	}{
		{
			name: "object shaped page.number",
			body: map[string]any{"page": map[string]any{"number": float64(1), "size": float64(32)}},
			page: 3,
			want: func(t *testing.T, out map[string]any) {
				page := out["page"].(map[string]any)
				assert.Equal(t, 3, page["number"])
				assert.Equal(t, float64(32), page["size"])
			},
		},
		{
			name: "top level pageNumber",
			body: map[string]any{"pageNumber": float64(1), "categoryId": "234"},
			page: 5,
			want: func(t *testing.T, out map[string]any) {
				assert.Equal(t, 5, out["pageNumber"])
			},
		},
		{
			name: "nested pagination",
			body: map[string]any{"pagination": map[string]any{"page": float64(1)}},
			page: 4,
			want: func(t *testing.T, out map[string]any) {
				assert.Equal(t, 4, out["pagination"].(map[string]any)["page"])
			},
		},
		{
			name: "offset limit recomputed",
			body: map[string]any{"offset": float64(0), "limit": float64(24)},
			page: 3,
			want: func(t *testing.T, out map[string]any) {
				assert.Equal(t, 48, out["offset"])
				assert.Equal(t, float64(24), out["limit"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := WithPage(tt.body, tt.page)
			require.NoError(t, err)
			tt.want(t, out)
		})
	}
}

func TestWithPageDoesNotMutateTemplate(t *testing.T) {
	body := map[string]any{"page": map[string]any{"number": float64(1)}}

	first, err := WithPage(body, 7)
	require.NoError(t, err)
	second, err := WithPage(body, 7)
	require.NoError(t, err)

	// Repeated calls are idempotent and the stored body is untouched.
	assert.Equal(t, first, second)
	assert.Equal(t, float64(1), body["page"].(map[string]any)["number"])

	// Returned copies are independent.
	first["page"].(map[string]any)["number"] = 99
	assert.Equal(t, 7, second["page"].(map[string]any)["number"])
}

func TestAPIClientFetchPage(t *testing.T) {
	tpl := testTemplate(map[string]any{"page": map[string]any{"number": float64(1)}})

	t.Run("products found in nested payload", func(t *testing.T) {
		client := NewAPIClient(tpl, 5*time.Second)
		httpmock.ActivateNonDefault(client.client)
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", tpl.Endpoint,
			httpmock.NewStringResponder(200, `{
				"data": {"items": [
					{"name": "Молоко 2л", "price": 52.4},
					{"name": "Кефір 900 мл", "prices": {"current": 45.9}}
				]}
			}`))

		result, err := client.FetchPage(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, 200, result.HTTPStatus)
		assert.Len(t, result.Products, 2)
		assert.Equal(t, "products_found=2", result.Note)
	})

	t.Run("non-200 is a recoverable fetch error", func(t *testing.T) {
		client := NewAPIClient(tpl, 5*time.Second)
		httpmock.ActivateNonDefault(client.client)
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", tpl.Endpoint,
			httpmock.NewStringResponder(500, "boom"))

		result, err := client.FetchPage(context.Background(), 2)
		require.Error(t, err)
		var fetchErr FetchError
		assert.True(t, errors.As(err, &fetchErr))
		require.NotNil(t, result)
		assert.Equal(t, 500, result.HTTPStatus)
		assert.Empty(t, result.Products)
	})

	t.Run("blocking interstitial is a challenge", func(t *testing.T) {
		client := NewAPIClient(tpl, 5*time.Second)
		httpmock.ActivateNonDefault(client.client)
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", tpl.Endpoint,
			httpmock.NewStringResponder(403,
				`<html><head><title>silpo.ua</title></head><body>Just a moment...</body></html>`))

		result, err := client.FetchPage(context.Background(), 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrChallenge))
		require.NotNil(t, result)
		assert.Equal(t, 403, result.HTTPStatus)
		assert.Equal(t, "challenge interstitial", result.Note)
	})

	t.Run("bad json is a parse error", func(t *testing.T) {
		client := NewAPIClient(tpl, 5*time.Second)
		httpmock.ActivateNonDefault(client.client)
		defer httpmock.DeactivateAndReset()

		httpmock.RegisterResponder("POST", tpl.Endpoint,
			httpmock.NewStringResponder(200, "{not json"))

		result, err := client.FetchPage(context.Background(), 2)
		require.Error(t, err)
		var parseErr ParseError
		assert.True(t, errors.As(err, &parseErr))
		require.NotNil(t, result)
		assert.Equal(t, "JSON decode failed", result.Note)
	})

	t.Run("template headers and cookies replayed", func(t *testing.T) {
		client := NewAPIClient(tpl, 5*time.Second)
		httpmock.ActivateNonDefault(client.client)
		defer httpmock.DeactivateAndReset()

		var gotReq *http.Request
		httpmock.RegisterResponder("POST", tpl.Endpoint,
			func(req *http.Request) (*http.Response, error) {
				gotReq = req
				return httpmock.NewStringResponse(200, `{}`), nil
			})

		_, err := client.FetchPage(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, gotReq)
		assert.Equal(t, "application/json", gotReq.Header.Get("accept"))
		cookie, err := gotReq.Cookie("sid")
		require.NoError(t, err)
		assert.Equal(t, "abc", cookie.Value)
	})
}
