package config

// Command line configurations, bound by the cli package.
var (
	// BindAddr is the address the RFB listener binds to.
	BindAddr = "0.0.0.0:5915"
	// WSBindAddr, when non-empty, enables the websocket bridge on this address.
	WSBindAddr = ""
	// Width and Height are the dimensions of the served framebuffer.
	Width  = 512
	Height = 384
	// MaxClients caps concurrent RFB connections. Zero means no limit.
	MaxClients = 0
	// Debug enables debug logging.
	Debug = false
)
