package config

// APIConfig exposes the journal over HTTP when Addr is set.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, must be sent as a bearer token.
	Token string `json:"token"`
}
