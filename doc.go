// Package autolocale provides automatic content localization for a web client.
//
// Autolocale translates user-visible text into the active language without
// requiring individual UI components to be internationalized. It covers two
// paths that share one translation client and cache: rendered content (see
// package processor, type Observer) and structured API responses (see package
// interceptor, type Transport).
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/autolocale"
//	    "github.com/ZaguanLabs/autolocale/cache"
//	    "github.com/ZaguanLabs/autolocale/provider"
//	)
//
//	func main() {
//	    p := provider.NewHTTPProvider(provider.HTTPConfig{
//	        BaseURL: "http://localhost:8000",
//	    })
//
//	    c := autolocale.NewClient(p,
//	        autolocale.WithCache(cache.NewInMemoryCache(cache.DefaultTTL)),
//	        autolocale.WithSourceLang("en"),
//	    )
//
//	    // Never fails: on any error the original text comes back.
//	    fmt.Println(c.Resolve(context.Background(), "Availability", "fr", "en"))
//	}
package autolocale
