package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/markers>; rel="markers"`,
		`</api/v1/stats>; rel="stats"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/markers>; rel="markers"`,
		`</api/v1/cache>; rel="cache"`,
	},
	"/api/v1/markers": {
		`</api/v1/markers.geojson>; rel="alternate"; type="application/geo+json"`,
		`</api/v1/stats>; rel="stats"`,
		`</api/v1/feelings>; rel="feelings"`,
		`</api/v1/categories>; rel="categories"`,
	},
	"/api/v1/markers.geojson": {
		`</api/v1/markers>; rel="alternate"; type="application/json"`,
	},
	"/api/v1/stats": {
		`</api/v1/markers>; rel="markers"`,
	},
	"/api/v1/feelings": {
		`</api/v1/categories>; rel="categories"`,
		`</api/v1/basemaps>; rel="basemaps"`,
	},
	"/api/v1/categories": {
		`</api/v1/feelings>; rel="feelings"`,
	},
	"/api/v1/cache": {
		`</api/v1/markers/refresh>; rel="refresh"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}
		return v, nil
	}
}
