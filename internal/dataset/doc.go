// Package dataset loads the cleaned historical cryptocurrency dataset and
// exposes coin selection over it.
//
// The dataset is a CSV with one row per coin per calendar day and the
// columns Date, Coin, Close, Marketcap, Return (column order insignificant).
// The loader trusts its input is pre-cleaned: no deduplication and no
// imputation are performed.
//
// # Usage
//
// Load once, query many times:
//
//	ds, err := dataset.LoadFile("cleaned_crypto.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	series, err := ds.Select("Bitcoin")
//
// For repeated loads keyed by source identity, wrap the loader in a Cache:
//
//	cache := dataset.NewCache(nil, logger)
//	ds, err := cache.Get(ctx, cfg.Dataset.Path)
package dataset
