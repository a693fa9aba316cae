package job

import (
	"context"
	"io"
)

// Searcher runs a query against an index. *database.ElasticsearchClient
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, index string, query io.Reader) ([]byte, error)
}

// Listing is one job document.
type Listing struct {
	ID       string
	Title    string
	URL      string
	Company  string
	Location string
	Category string
}

// randomListingQuery scores every document randomly and keeps the top one.
const randomListingQuery = `{
	"size": 1,
	"query": {
		"function_score": {
			"query": {"match_all": {}},
			"random_score": {},
			"boost_mode": "replace"
		}
	}
}`
