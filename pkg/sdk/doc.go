// Package schemematch is an embeddable Go client for welfare scheme discovery:
// free-text search over a scheme corpus with per-user eligibility annotation.
//
// The client talks to the corpus directly (Valkey, Redis or Postgres) and runs
// the same ranking and eligibility pipeline as the HTTP service.
//
//	client, _ := schemematch.New(ctx,
//	    schemematch.WithValkey("localhost:6379", ""),
//	    schemematch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, schemematch.SearchRequest{
//	    Query:   "scholarship for girl students in Kerala",
//	    Profile: &schemematch.Profile{State: "Kerala"},
//	})
//	for _, r := range res.Results {
//	    fmt.Println(r.Scheme.Name, r.Status())
//	}
package schemematch
