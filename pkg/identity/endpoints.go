package identity

import "fmt"

// Endpoints holds the concrete identity endpoints for one cloud instance
// and authority combination.
type Endpoints struct {
	// AuthorizationEndpoint is where browsers are sent for user sign-in.
	AuthorizationEndpoint string

	// TokenEndpoint is where credentials are exchanged for tokens.
	TokenEndpoint string

	// OpenIDConfigurationEndpoint serves the OpenID discovery document.
	OpenIDConfigurationEndpoint string

	// DeviceCodeEndpoint is where device code flows are initiated.
	DeviceCodeEndpoint string
}

// ResolveEndpoints maps a cloud instance and authority to concrete
// endpoint URLs. It is a pure function of its inputs and fails only when
// a tenant-scoped authority carries an empty tenant id.
func ResolveEndpoints(cloud CloudInstance, authority Authority) (Endpoints, error) {
	path, err := authority.Path()
	if err != nil {
		return Endpoints{}, err
	}

	host := cloud.Host()
	return Endpoints{
		AuthorizationEndpoint:       fmt.Sprintf("%s/%s/oauth2/v2.0/authorize", host, path),
		TokenEndpoint:               fmt.Sprintf("%s/%s/oauth2/v2.0/token", host, path),
		OpenIDConfigurationEndpoint: fmt.Sprintf("%s/%s/v2.0/.well-known/openid-configuration", host, path),
		DeviceCodeEndpoint:          fmt.Sprintf("%s/%s/oauth2/v2.0/devicecode", host, path),
	}, nil
}
