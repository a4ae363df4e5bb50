// Package solrdex is a Go client for Apache Solr collections.
//
// Every operation builds its own adaptor internally, so a Client is safe for
// concurrent use while sharing one HTTP connection pool.
//
//	client, _ := solrdex.New(
//	    solrdex.WithEndpoint("https://solr.internal:8983/solr"),
//	    solrdex.WithIndex("Products", 4, "brand", "color"),
//	)
//	_, _ = client.EnsureCollection(ctx, "Products")
//
//	products := client.Index("Products")
//	_, _ = products.BulkUpsert(ctx, []solrdex.Document{{"id": "1", "price": 2.0}})
//
//	res, _ := products.Search("running shoes").
//	    Where("price", "gte", 10).
//	    Facet("brand", "Acme").
//	    Page(0, 20).
//	    Do(ctx)
//
// Without WithEndpoint the endpoint is read from SOLR_END_POINT on every operation.
package solrdex
