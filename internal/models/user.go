package models

// Token sources.
const (
	SourceLocal = "local"
	SourceOIDC  = "oidc"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	Subject string
	Source  string
}

// IsOIDC reports whether the principal was authenticated by the OIDC provider.
func (p *Principal) IsOIDC() bool {
	return p != nil && p.Source == SourceOIDC
}
