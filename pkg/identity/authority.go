package identity

import "errors"

// ErrMissingTenantID is returned when a tenant-scoped authority is
// required but the tenant id is empty.
var ErrMissingTenantID = errors.New("authority requires a tenant id but none was provided")

// AuthorityType distinguishes the multi-tenant authority categories from
// a specific tenant.
type AuthorityType int

const (
	// AuthorityCommon allows both work/school and personal accounts.
	AuthorityCommon AuthorityType = iota
	// AuthorityOrganizations allows only work/school accounts.
	AuthorityOrganizations
	// AuthorityConsumers allows only personal Microsoft accounts.
	AuthorityConsumers
	// AuthorityTenant scopes sign-in to a single directory.
	AuthorityTenant
)

// Authority is the tenant-scoping identifier used when building identity
// endpoints. The zero value is the "common" authority.
type Authority struct {
	Type     AuthorityType
	TenantID string
}

// TenantAuthority returns an authority scoped to a specific tenant.
func TenantAuthority(tenantID string) Authority {
	return Authority{Type: AuthorityTenant, TenantID: tenantID}
}

// ParseAuthority maps a configuration string onto an Authority. The
// strings "common", "organizations" and "consumers" select the matching
// category; anything else is treated as a tenant id.
func ParseAuthority(s string) Authority {
	switch s {
	case "", "common":
		return Authority{Type: AuthorityCommon}
	case "organizations":
		return Authority{Type: AuthorityOrganizations}
	case "consumers":
		return Authority{Type: AuthorityConsumers}
	default:
		return TenantAuthority(s)
	}
}

// Path returns the URL path segment for the authority, as it appears in
// https://{host}/{authority}/oauth2/v2.0/token.
func (a Authority) Path() (string, error) {
	switch a.Type {
	case AuthorityOrganizations:
		return "organizations", nil
	case AuthorityConsumers:
		return "consumers", nil
	case AuthorityTenant:
		if a.TenantID == "" {
			return "", ErrMissingTenantID
		}
		return a.TenantID, nil
	default:
		return "common", nil
	}
}
