package identity

// CloudInstance selects the sovereign/national cloud environment that
// determines the base host for all identity endpoints.
type CloudInstance int

const (
	// CloudPublic is the worldwide Azure AD cloud.
	CloudPublic CloudInstance = iota
	// CloudChina is the Azure AD cloud operated by 21Vianet.
	CloudChina
	// CloudGermany is the legacy German sovereign cloud.
	CloudGermany
	// CloudUsGov is the US government cloud.
	CloudUsGov
)

// Host returns the login host base URL for the cloud instance.
func (c CloudInstance) Host() string {
	switch c {
	case CloudChina:
		return "https://login.chinacloudapi.cn"
	case CloudGermany:
		return "https://login.microsoftonline.de"
	case CloudUsGov:
		return "https://login.microsoftonline.us"
	default:
		return "https://login.microsoftonline.com"
	}
}

// String makes CloudInstance satisfy fmt.Stringer.
func (c CloudInstance) String() string {
	switch c {
	case CloudChina:
		return "china"
	case CloudGermany:
		return "germany"
	case CloudUsGov:
		return "usgov"
	default:
		return "public"
	}
}

// ParseCloudInstance maps a configuration string onto a CloudInstance.
// Unknown values fall back to the public cloud.
func ParseCloudInstance(s string) CloudInstance {
	switch s {
	case "china":
		return CloudChina
	case "germany":
		return CloudGermany
	case "usgov":
		return CloudUsGov
	default:
		return CloudPublic
	}
}
