// Package source resolves a dataset location to a [popio.Dataset].
//
// A location is either a local file path or an http(s) URL. Local files are
// read with [popio.ImportFile]. Remote datasets are fetched with retry on
// network failures and 5xx responses, and the raw body is kept in a
// [cache.Cache] for a configurable TTL so repeated CLI runs do not refetch:
//
//	loader := source.NewLoader(fileCache, source.WithTTL(10*time.Minute))
//	ds, err := loader.Load(ctx, "https://stats.example.org/indicators.json", false)
//
// The remote format is taken from the URL path extension, then from the
// Content-Type header, and defaults to JSON.
package source
