// Package provider implements the remote translation backends.
package provider

import "github.com/ZaguanLabs/autolocale"

// Provider is an alias to the main package interface for convenience.
type Provider = autolocale.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = autolocale.TranslateRequest
